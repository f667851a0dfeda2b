package domain

import "time"

// CalendarEvent is an existing appointment consulted for overlap detection.
// Availability-type events advertise open time and never block a slot.
type CalendarEvent struct {
	ID             int64
	TechnicianID   int64
	EventType      string
	StartAt        time.Time
	EndAt          time.Time
	IsAvailability bool
}

// TimeSlot is a discrete bookable interval on a single day.
type TimeSlot struct {
	Start     time.Time
	End       time.Time
	Available bool
}
