package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates billing document states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
)

// AdditionalItem is an invoice line not backed by a work order.
type AdditionalItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceWorkOrder is a snapshot line referencing a work order. AdjustedCost
// defaults to the work order's aggregate total but may be overridden per
// invoice; the override never mutates the work order record.
type InvoiceWorkOrder struct {
	WorkOrderID  int64           `json:"work_order_id"`
	AdjustedCost decimal.Decimal `json:"adjusted_cost"`
}

// PaymentMethod enumerates how an invoice was settled.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodACH        PaymentMethod = "ACH"
	PaymentMethodExternal   PaymentMethod = "EXTERNAL"
)

// PaymentDetails carries the caller-supplied settlement input. Only its shape
// is validated here; actual settlement is delegated to an external collaborator.
type PaymentDetails struct {
	CardNumber    string
	RoutingNumber string
	AccountNumber string
	ExternalKind  string
	Reference     string
}

// Invoice aggregates work orders plus adjustments and tax for one ticket.
// Total is always Subtotal + Tax, with Tax = Subtotal*TaxPercentage/100
// rounded to cents.
type Invoice struct {
	ID              int64
	TicketID        int64
	OrganizationID  int64
	WorkOrders      []InvoiceWorkOrder
	AdditionalItems []AdditionalItem
	Subtotal        decimal.Decimal
	TaxPercentage   decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          InvoiceStatus
	Notes           *string
	PaymentMethod   *PaymentMethod
	PaymentRef      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
