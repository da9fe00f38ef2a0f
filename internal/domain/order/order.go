package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/catalog"
)

// Status is the order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod is the payment method selected at checkout
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Order is a placed order
type Order struct {
	ID              int64           `json:"id"`
	CustomerID      int64           `json:"customerId"`
	Items           []Item          `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	BillingAddress  string          `json:"billingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Item is an order line
type Item struct {
	ID               int64                    `json:"id"`
	ProductID        int64                    `json:"productId"`
	Quantity         int                      `json:"quantity"`
	Price            decimal.Decimal          `json:"price"`
	SelectedVariants []catalog.ProductVariant `json:"selectedVariants,omitempty"`
}

// CreateData is the order creation payload
type CreateData struct {
	CustomerID       int64         `json:"customerId"`
	Items            []CreateItem  `json:"items"`
	ShippingMethodID int64         `json:"shippingMethodId"`
	ShippingAddress  string        `json:"shippingAddress"`
	BillingAddress   string        `json:"billingAddress"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
}

// CreateItem is a line in the order creation payload
type CreateItem struct {
	ProductID        int64                    `json:"productId"`
	Quantity         int                      `json:"quantity"`
	Price            decimal.Decimal          `json:"price"`
	SelectedVariants []catalog.ProductVariant `json:"selectedVariants,omitempty"`
}

// Filters are query parameters accepted by the order listing endpoints
type Filters struct {
	Status Status `json:"status,omitempty"`
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Page is a page of orders
type Page struct {
	Data  []Order `json:"data"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
