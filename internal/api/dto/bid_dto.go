package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// BidRequest carries vendor pricing terms for place and update.
type BidRequest struct {
	HourlyRate        decimal.Decimal         `json:"hourly_rate"`
	EstimatedHours    decimal.Decimal         `json:"estimated_hours"`
	PartsEstimate     decimal.Decimal         `json:"parts_estimate"`
	ResponseTimeValue int                     `json:"response_time_value"`
	ResponseTimeUnit  domain.ResponseTimeUnit `json:"response_time_unit"`
}

// ResolveBidRequest carries an explicit accept/reject/counter decision.
type ResolveBidRequest struct {
	Decision        string          `json:"decision"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CounterOffer    decimal.Decimal `json:"counter_offer,omitempty"`
	CounterNotes    string          `json:"counter_notes,omitempty"`
}

// BidResponse is the full bid view.
type BidResponse struct {
	ID                int64                   `json:"id"`
	TicketID          int64                   `json:"ticket_id"`
	VendorID          int64                   `json:"vendor_id"`
	HourlyRate        decimal.Decimal         `json:"hourly_rate"`
	EstimatedHours    decimal.Decimal         `json:"estimated_hours"`
	PartsEstimate     decimal.Decimal         `json:"parts_estimate"`
	ResponseTimeValue int                     `json:"response_time_value"`
	ResponseTimeUnit  domain.ResponseTimeUnit `json:"response_time_unit"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	Status            domain.BidStatus        `json:"status"`
	CounterOffer      *decimal.Decimal        `json:"counter_offer,omitempty"`
	CounterNotes      *string                 `json:"counter_notes,omitempty"`
	RejectionReason   *string                 `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}
