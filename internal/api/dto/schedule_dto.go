package dto

import "time"

// TimeSlotResponse is one bookable interval.
type TimeSlotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// CreateCalendarEventRequest payload.
type CreateCalendarEventRequest struct {
	TechnicianID   int64     `json:"technician_id"`
	EventType      string    `json:"event_type"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
	IsAvailability bool      `json:"is_availability"`
}
