package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus enumerates marketplace bid states.
type BidStatus string

const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
	BidStatusCounter  BidStatus = "COUNTER"
)

// ResponseTimeUnit qualifies a bid's promised response time.
type ResponseTimeUnit string

const (
	ResponseTimeHours ResponseTimeUnit = "HOURS"
	ResponseTimeDays  ResponseTimeUnit = "DAYS"
)

// VendorBid is a marketplace vendor's priced offer to fulfill a ticket.
// At most one bid exists per (ticket, vendor) pair, and at most one bid per
// ticket may be accepted at any time.
type VendorBid struct {
	ID                int64
	TicketID          int64
	VendorID          int64
	HourlyRate        decimal.Decimal
	EstimatedHours    decimal.Decimal
	PartsEstimate     decimal.Decimal
	ResponseTimeValue int
	ResponseTimeUnit  ResponseTimeUnit
	TotalAmount       decimal.Decimal
	Status            BidStatus
	CounterOffer      *decimal.Decimal
	CounterNotes      *string
	RejectionReason   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
