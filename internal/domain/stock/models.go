package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is either a product or one of its variants, whichever carries the tracked quantity.
type Unit struct {
	ProductID     string          `json:"productId"`
	VariantID     string          `json:"variantId,omitempty"`
	ShopID        string          `json:"shopId"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	Quantity      int             `json:"quantity"`
	LowStockAlert int             `json:"lowStockAlert"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	VATPercent    decimal.Decimal `json:"vatPercent"`
}

func (u Unit) IsVariant() bool {
	return u.VariantID != ""
}

func (u Unit) Active() bool {
	return u.Status == ProductStatusActive
}

// Low reports whether quantity is at or below the alert threshold.
func (u Unit) Low() bool {
	return u.Quantity <= u.LowStockAlert
}

type Movement struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shopId"`
	ProductID     string    `json:"productId"`
	VariantID     string    `json:"variantId,omitempty"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	OrderID       string    `json:"orderId,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Change describes an order debit or a return credit. Quantity is always positive; the
// direction comes from the operation.
type Change struct {
	Unit     Unit
	Quantity int
	OrderID  string
	Note     string
	ActorID  string
}

type AdjustRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Delta     int    `json:"delta"`
	Note      string `json:"note"`
}

type MovementFilter struct {
	ProductID string
	VariantID string
}
