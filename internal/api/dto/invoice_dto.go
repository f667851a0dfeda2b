package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateInvoiceRequest payload. Adjusted costs are keyed by work order id.
type CreateInvoiceRequest struct {
	TicketID        int64                     `json:"ticket_id"`
	WorkOrderIDs    []int64                   `json:"work_order_ids"`
	AdditionalItems []domain.AdditionalItem   `json:"additional_items"`
	TaxPercentage   *decimal.Decimal          `json:"tax_percentage"`
	AdjustedCosts   map[int64]decimal.Decimal `json:"adjusted_costs"`
	Notes           *string                   `json:"notes"`
}

// PaymentRequest payload for POST /invoices/:id/payments.
type PaymentRequest struct {
	Method        domain.PaymentMethod `json:"method"`
	CardNumber    string               `json:"card_number,omitempty"`
	RoutingNumber string               `json:"routing_number,omitempty"`
	AccountNumber string               `json:"account_number,omitempty"`
	ExternalKind  string               `json:"external_kind,omitempty"`
	Reference     string               `json:"reference,omitempty"`
}

// InvoiceResponse is the full invoice view.
type InvoiceResponse struct {
	ID              int64                     `json:"id"`
	TicketID        int64                     `json:"ticket_id"`
	OrganizationID  int64                     `json:"organization_id"`
	WorkOrders      []domain.InvoiceWorkOrder `json:"work_orders"`
	AdditionalItems []domain.AdditionalItem   `json:"additional_items"`
	Subtotal        decimal.Decimal           `json:"subtotal"`
	TaxPercentage   decimal.Decimal           `json:"tax_percentage"`
	Tax             decimal.Decimal           `json:"tax"`
	Total           decimal.Decimal           `json:"total"`
	Status          domain.InvoiceStatus      `json:"status"`
	Notes           *string                   `json:"notes,omitempty"`
	PaymentMethod   *domain.PaymentMethod     `json:"payment_method,omitempty"`
	PaymentRef      *string                   `json:"payment_ref,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}
