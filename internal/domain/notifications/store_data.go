package notifications

import "context"

func (s *Store) CreateNotification(ctx context.Context, msg Message) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (shop_id, user_id, type, title, body)
    VALUES ($1,$2,$3,$4,$5)
  `, msg.ShopID, nullIfEmpty(msg.UserID), msg.Type, msg.Title, msg.Body)
	return err
}

func (s *Store) EmailSettings(ctx context.Context, shopID string) (EmailSettings, error) {
	var settings EmailSettings
	if err := s.DB.QueryRow(ctx, `
    SELECT email_notifications_enabled, COALESCE(email_from, ''), COALESCE(notify_email, '')
    FROM shops
    WHERE id::text = $1
  `, shopID).Scan(&settings.Enabled, &settings.From, &settings.NotifyEmail); err != nil {
		return EmailSettings{}, err
	}
	return settings, nil
}

func (s *Store) ListNotifications(ctx context.Context, shopIDs []string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, shop_id, COALESCE(user_id, ''), type, title, body, read_at, created_at
    FROM notifications
    WHERE shop_id::text = ANY($1::text[])
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, shopIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.ShopID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, shopIDs []string, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
  `, notificationID, shopIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
