package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompletionStatus marks how a technician left the job site.
type CompletionStatus string

const (
	CompletionStatusCompleted    CompletionStatus = "COMPLETED"
	CompletionStatusReturnNeeded CompletionStatus = "RETURN_NEEDED"
)

// Part is a material line on a work order.
type Part struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// OtherCharge is a flat non-part, non-labor charge.
type OtherCharge struct {
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

// WorkOrder records work performed by a technician against a ticket.
// TimeIn/TimeOut are wall-clock "HH:MM" values on WorkDate; TotalCost is
// derived by the cost aggregator and never trusted from the client.
// A work order becomes immutable once referenced by a billed invoice.
type WorkOrder struct {
	ID               int64
	TicketID         int64
	TechnicianID     int64
	Description      string
	CompletionStatus CompletionStatus
	TimeIn           string
	TimeOut          string
	WorkDate         time.Time
	Parts            []Part
	OtherCharges     []OtherCharge
	HourlyRate       decimal.Decimal
	TotalCost        decimal.Decimal
	CreatedAt        time.Time
}
