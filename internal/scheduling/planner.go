package scheduling

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

const clockLayout = "15:04"

// Defaults for slot generation when the caller supplies none.
const (
	DefaultWindowStart = "08:00"
	DefaultWindowEnd   = "18:00"
	DefaultStepMinutes = 30
)

// GenerateSlots enumerates all slots of the given duration starting every
// stepMinutes within the window on the given date. Slots whose end would pass
// the window end are discarded; a slot ending exactly at the window end is
// included. Generation is pure: the same inputs always yield the same slots.
func GenerateSlots(date time.Time, windowStart, windowEnd string, stepMinutes int, duration time.Duration) ([]domain.TimeSlot, error) {
	if windowStart == "" {
		windowStart = DefaultWindowStart
	}
	if windowEnd == "" {
		windowEnd = DefaultWindowEnd
	}
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	if duration <= 0 {
		return nil, apperrors.NewValidationError("duration must be positive", nil)
	}

	start, err := clockOn(date, windowStart)
	if err != nil {
		return nil, apperrors.NewValidationError("window start must be HH:MM",
			map[string]any{"window_start": windowStart})
	}
	end, err := clockOn(date, windowEnd)
	if err != nil {
		return nil, apperrors.NewValidationError("window end must be HH:MM",
			map[string]any{"window_end": windowEnd})
	}
	if !end.After(start) {
		return nil, apperrors.NewValidationError("window end must be after window start", nil)
	}

	step := time.Duration(stepMinutes) * time.Minute
	var slots []domain.TimeSlot
	for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(step) {
		slots = append(slots, domain.TimeSlot{
			Start:     cursor,
			End:       cursor.Add(duration),
			Available: true,
		})
	}
	return slots, nil
}

// IsAvailable reports whether the slot is free of conflicts for its day.
// Overlap is half-open: slot.Start < event.End && slot.End > event.Start.
// Availability-type events never block.
func IsAvailable(slot domain.TimeSlot, events []domain.CalendarEvent) bool {
	for _, event := range events {
		if event.IsAvailability {
			continue
		}
		if !sameDay(slot.Start, event.StartAt) {
			continue
		}
		if slot.Start.Before(event.EndAt) && slot.End.After(event.StartAt) {
			return false
		}
	}
	return true
}

// MarkAvailability applies IsAvailable to each generated slot.
func MarkAvailability(slots []domain.TimeSlot, events []domain.CalendarEvent) []domain.TimeSlot {
	marked := make([]domain.TimeSlot, len(slots))
	for i, slot := range slots {
		slot.Available = IsAvailable(slot, events)
		marked[i] = slot
	}
	return marked
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
