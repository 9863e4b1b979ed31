package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/domain/commission"
	"shopledger/internal/domain/pricing"
	"shopledger/internal/domain/stock"
)

type LineRequest struct {
	ProductID      string          `json:"productId"`
	VariantID      string          `json:"variantId,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountType   string          `json:"discountType,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

type CreateRequest struct {
	ShopID         string          `json:"shopId"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone,omitempty"`
	CustomerEmail  string          `json:"customerEmail,omitempty"`
	Items          []LineRequest   `json:"items"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	CashAmount     decimal.Decimal `json:"cashAmount"`
	CardAmount     decimal.Decimal `json:"cardAmount"`
	WalletAmount   decimal.Decimal `json:"walletAmount"`
	PaymentMethod  string          `json:"paymentMethod,omitempty"`
	KitchenPending bool            `json:"kitchenPending"`
	Status         string          `json:"status,omitempty"`
	StaffID        string          `json:"staffId,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

type Order struct {
	ID            string                 `json:"id"`
	ShopID        string                 `json:"shopId"`
	OrderNumber   string                 `json:"orderNumber"`
	CustomerName  string                 `json:"customerName"`
	CustomerPhone string                 `json:"customerPhone,omitempty"`
	CustomerEmail string                 `json:"customerEmail,omitempty"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Tax           decimal.Decimal        `json:"tax"`
	Discount      decimal.Decimal        `json:"discount"`
	Total         decimal.Decimal        `json:"total"`
	CashAmount    decimal.Decimal        `json:"cashAmount"`
	CardAmount    decimal.Decimal        `json:"cardAmount"`
	WalletAmount  decimal.Decimal        `json:"walletAmount"`
	PaidAmount    decimal.Decimal        `json:"paidAmount"`
	PaymentMethod string                 `json:"paymentMethod"`
	PaymentStatus string                 `json:"paymentStatus"`
	Status        string                 `json:"status"`
	StaffID       string                 `json:"staffId,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	CreatedBy     string                 `json:"createdBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	Lines         []Line                 `json:"lines,omitempty"`
	Commission    *commission.Commission `json:"commission,omitempty"`
}

type Line struct {
	ID                string               `json:"id"`
	OrderID           string               `json:"orderId"`
	LineNo            int                  `json:"lineNo"`
	ProductID         string               `json:"productId"`
	VariantID         string               `json:"variantId,omitempty"`
	Quantity          int                  `json:"quantity"`
	UnitPrice         decimal.Decimal      `json:"unitPrice"`
	OriginalUnitPrice decimal.Decimal      `json:"originalUnitPrice"`
	DiscountType      pricing.DiscountType `json:"discountType"`
	DiscountAmount    decimal.Decimal      `json:"discountAmount"`
	DiscountPerUnit   decimal.Decimal      `json:"discountPerUnit"`
	VATPercent        decimal.Decimal      `json:"vatPercent"`
	Subtotal          decimal.Decimal      `json:"subtotal"`
	PurchasePrice     decimal.Decimal      `json:"purchasePrice"`
	CreatedAt         time.Time            `json:"createdAt"`
}

// PricedLine is a validated line item together with the locked unit it draws from.
type PricedLine struct {
	Unit stock.Unit
	Line Line
}

type Validated struct {
	Lines    []PricedLine
	Subtotal decimal.Decimal
}

type ListFilter struct {
	ShopID        string
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

type ListResult struct {
	Items []Order `json:"items"`
	Total int     `json:"total"`
}
