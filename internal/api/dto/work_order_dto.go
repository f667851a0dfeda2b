package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// WorkOrderRequest payload for POST /tickets/:id/work-orders.
type WorkOrderRequest struct {
	Description      string                  `json:"description"`
	CompletionStatus domain.CompletionStatus `json:"completion_status"`
	TimeIn           string                  `json:"time_in"`
	TimeOut          string                  `json:"time_out"`
	WorkDate         string                  `json:"work_date"`
	Parts            []domain.Part           `json:"parts"`
	OtherCharges     []domain.OtherCharge    `json:"other_charges"`
	HourlyRate       decimal.Decimal         `json:"hourly_rate"`
}

// WorkOrderResponse is the full work-order view including the derived cost.
type WorkOrderResponse struct {
	ID               int64                   `json:"id"`
	TicketID         int64                   `json:"ticket_id"`
	TechnicianID     int64                   `json:"technician_id"`
	Description      string                  `json:"description"`
	CompletionStatus domain.CompletionStatus `json:"completion_status"`
	TimeIn           string                  `json:"time_in"`
	TimeOut          string                  `json:"time_out"`
	WorkDate         string                  `json:"work_date"`
	Parts            []domain.Part           `json:"parts"`
	OtherCharges     []domain.OtherCharge    `json:"other_charges"`
	HourlyRate       decimal.Decimal         `json:"hourly_rate"`
	TotalCost        decimal.Decimal         `json:"total_cost"`
	CreatedAt        time.Time               `json:"created_at"`
}
