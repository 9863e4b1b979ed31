package notifications

import "time"

// Message is one notification to store for a shop. UserID is optional; To overrides the
// shop's notify address for the email copy.
type Message struct {
	ShopID string
	UserID string
	Type   string
	Title  string
	Body   string
	To     string
}

type Notification struct {
	ID        string     `json:"id"`
	ShopID    string     `json:"shopId"`
	UserID    string     `json:"userId,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// EmailSettings is the per-shop email configuration.
type EmailSettings struct {
	Enabled     bool
	From        string
	NotifyEmail string
}
