package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceVariant identifies one of the laundry treatments offered per product.
type ServiceVariant string

const (
	ServiceIron        ServiceVariant = "iron"
	ServiceWashAndIron ServiceVariant = "washAndIron"
	ServiceDryClean    ServiceVariant = "dryClean"
)

// Valid reports whether the variant is one of the supported treatments.
func (v ServiceVariant) Valid() bool {
	switch v {
	case ServiceIron, ServiceWashAndIron, ServiceDryClean:
		return true
	}
	return false
}

// ServiceRates holds the three per-treatment unit prices of a product.
type ServiceRates struct {
	Iron        decimal.Decimal
	WashAndIron decimal.Decimal
	DryClean    decimal.Decimal
}

// Product is a catalogue entry. Rates are snapshotted onto order lines at
// checkout, so later edits never rewrite historical pricing.
type Product struct {
	ID        string
	Name      string
	Category  string
	Barcode   string
	Rates     ServiceRates
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer is referenced by orders but not owned by them.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentMethod enumerates how an order was (or will be) paid.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
	PaymentSplit  PaymentMethod = "split"
	PaymentCOD    PaymentMethod = "cod"
)

// Valid reports whether the payment method is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCredit, PaymentSplit, PaymentCOD:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

// Valid reports whether the status is a known order state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// PaymentStatus tracks deferred payment collection on COD orders.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// DeliveryStatus tracks fulfilment of COD orders.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

// OrderLine is an immutable line item. Product name, barcode and the unit
// rate are captured at checkout; refunds display the rate-at-sale, never the
// catalogue's current price.
type OrderLine struct {
	ProductID      string
	ProductName    string
	Barcode        string
	Service        ServiceVariant
	Quantity       int
	Rate           decimal.Decimal
	DiscountPct    decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Order aggregates a priced set of lines for a customer.
type Order struct {
	ID             string
	CustomerID     string
	CustomerName   string
	Lines          []OrderLine
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	TaxRatePct     decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentRef     string
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReturnItem records one refunded product-quantity within a return.
type ReturnItem struct {
	ID           string
	ReturnID     string
	ProductID    string
	ProductName  string
	Barcode      string
	Service      ServiceVariant
	Quantity     int
	Rate         decimal.Decimal
	RefundAmount decimal.Decimal
}

// Return is a refund ledger entry against a previously stored order.
type Return struct {
	ID           string
	OrderID      string
	Reason       string
	RefundAmount decimal.Decimal
	Items        []ReturnItem
	CreatedAt    time.Time
}

// ReturnRecord is a Return joined with order and customer context for
// display in the returns listing.
type ReturnRecord struct {
	Return
	OrderTotal    decimal.Decimal
	CustomerName  string
	CustomerPhone string
}

// Settings carries the store-wide configuration read per request at
// aggregation time so mid-session rate changes take effect immediately.
type Settings struct {
	StoreName  string
	TaxRatePct decimal.Decimal
	Currency   string
	UpdatedAt  time.Time
}
