package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, msg Message) error
	EmailSettings(ctx context.Context, shopID string) (EmailSettings, error)
	ListNotifications(ctx context.Context, shopIDs []string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, shopIDs []string, notificationID string) error
}
