package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventBidPlaced           EventType = "bid_placed"
	EventBidResolved         EventType = "bid_resolved"
	EventWorkOrderSubmitted  EventType = "work_order_submitted"
	EventInvoiceCreated      EventType = "invoice_created"
	EventInvoiceSent         EventType = "invoice_sent"
	EventInvoicePaid         EventType = "invoice_paid"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role domain.Role `json:"role"`
	ID   *int64      `json:"id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	OrganizationID int64                 `json:"organization_id"`
	Priority       domain.TicketPriority `json:"priority"`
	Marketplace    bool                  `json:"marketplace"`
	Title          string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// BidPlacedPayload payload.
type BidPlacedPayload struct {
	BidID       int64           `json:"bid_id"`
	VendorID    int64           `json:"vendor_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// BidResolvedPayload payload.
type BidResolvedPayload struct {
	BidID    int64            `json:"bid_id"`
	VendorID int64            `json:"vendor_id"`
	Decision string           `json:"decision"`
	Status   domain.BidStatus `json:"status"`
}

// WorkOrderSubmittedPayload payload.
type WorkOrderSubmittedPayload struct {
	WorkOrderID      int64                   `json:"work_order_id"`
	TechnicianID     int64                   `json:"technician_id"`
	CompletionStatus domain.CompletionStatus `json:"completion_status"`
	TotalCost        decimal.Decimal         `json:"total_cost"`
}

// InvoicePayload is shared by invoice lifecycle events.
type InvoicePayload struct {
	InvoiceID int64                `json:"invoice_id"`
	Status    domain.InvoiceStatus `json:"status"`
	Total     decimal.Decimal      `json:"total"`
}
