package notifications

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	created  []Message
	settings EmailSettings
	lookup   error
}

func (f *fakeStore) CreateNotification(ctx context.Context, msg Message) error {
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeStore) EmailSettings(ctx context.Context, shopID string) (EmailSettings, error) {
	return f.settings, f.lookup
}

func (f *fakeStore) ListNotifications(ctx context.Context, shopIDs []string, limit, offset int) ([]Notification, error) {
	return nil, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, shopIDs []string, notificationID string) error {
	return nil
}

type sent struct {
	from, to, subject string
}

type fakeMailer struct {
	sent []sent
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	m.sent = append(m.sent, sent{from, to, subject})
	return m.err
}

func TestCreateStoresAndMailsShopAddress(t *testing.T) {
	store := &fakeStore{settings: EmailSettings{Enabled: true, NotifyEmail: "owner@shop.test"}}
	mailer := &fakeMailer{}
	svc := New(store, mailer)

	msg := Message{ShopID: "shop-1", Type: TypeLowStock, Title: "Low stock", Body: "Rice: 2 left"}
	if err := svc.Create(context.Background(), msg); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.created) != 1 || store.created[0].Title != "Low stock" {
		t.Fatalf("expected stored notification, got %+v", store.created)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	if got := mailer.sent[0]; got.to != "owner@shop.test" || got.from != "no-reply@example.com" {
		t.Fatalf("unexpected email %+v", got)
	}
}

func TestCreatePrefersExplicitRecipient(t *testing.T) {
	store := &fakeStore{settings: EmailSettings{Enabled: true, From: "payroll@shop.test", NotifyEmail: "owner@shop.test"}}
	mailer := &fakeMailer{}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), Message{ShopID: "shop-1", Title: "Payslip", To: "asha@shop.test"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := mailer.sent[0]; got.to != "asha@shop.test" || got.from != "payroll@shop.test" {
		t.Fatalf("unexpected email %+v", got)
	}
}

func TestCreateSkipsEmailWhenDisabled(t *testing.T) {
	store := &fakeStore{settings: EmailSettings{Enabled: false, NotifyEmail: "owner@shop.test"}}
	mailer := &fakeMailer{}
	if err := New(store, mailer).Create(context.Background(), Message{ShopID: "shop-1", Title: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(mailer.sent))
	}
	if len(store.created) != 1 {
		t.Fatalf("notification must still be stored")
	}
}

func TestCreateSwallowsEmailFailures(t *testing.T) {
	store := &fakeStore{settings: EmailSettings{Enabled: true, NotifyEmail: "owner@shop.test"}}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	if err := New(store, mailer).Create(context.Background(), Message{ShopID: "shop-1", Title: "x"}); err != nil {
		t.Fatalf("email failure must not surface, got %v", err)
	}

	store.lookup = errors.New("db down")
	if err := New(store, mailer).Create(context.Background(), Message{ShopID: "shop-1", Title: "y"}); err != nil {
		t.Fatalf("settings failure must not surface, got %v", err)
	}
}
