package notifications

import (
	"context"
	"log/slog"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Create stores msg and then emails it when the shop has email enabled. Email failures are
// logged, never returned.
func (s *Service) Create(ctx context.Context, msg Message) error {
	if err := s.store.CreateNotification(ctx, msg); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}

	settings, err := s.store.EmailSettings(ctx, msg.ShopID)
	if err != nil {
		slog.Warn("notification email settings lookup failed", "shopId", msg.ShopID, "err", err)
		return nil
	}
	if !settings.Enabled {
		return nil
	}
	from := settings.From
	if from == "" {
		from = s.DefaultFrom
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		to = settings.NotifyEmail
	}
	if to == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, from, to, msg.Title, msg.Body); err != nil {
		slog.Warn("notification email send failed", "shopId", msg.ShopID, "type", msg.Type, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, shopIDs []string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, shopIDs, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, shopIDs []string, notificationID string) error {
	return s.store.MarkRead(ctx, shopIDs, notificationID)
}
