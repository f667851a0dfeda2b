package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

var day = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 16, hour, minute, 0, 0, time.UTC)
}

// scenario: 4h slots in an 08:00-18:00 window start every 30 minutes up to
// 14:00 only.
func TestGenerateSlotsFourHourDuration(t *testing.T) {
	slots, err := GenerateSlots(day, "08:00", "18:00", 30, 4*time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 13)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(12, 0), slots[0].End)
	assert.Equal(t, at(14, 0), slots[len(slots)-1].Start)
	assert.Equal(t, at(18, 0), slots[len(slots)-1].End)
}

// A slot ending exactly at the window end is included; one step later is not.
func TestGenerateSlotsWindowEndBoundary(t *testing.T) {
	slots, err := GenerateSlots(day, "08:00", "10:00", 30, time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, at(9, 0), slots[2].Start)
	assert.Equal(t, at(10, 0), slots[2].End)
}

func TestGenerateSlotsDefaults(t *testing.T) {
	slots, err := GenerateSlots(day, "", "", 0, time.Hour)
	require.NoError(t, err)
	// 08:00 through 17:00 starts, every 30 minutes
	require.Len(t, slots, 19)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(17, 0), slots[18].Start)
}

func TestGenerateSlotsValidation(t *testing.T) {
	_, err := GenerateSlots(day, "08:00", "18:00", 30, 0)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = GenerateSlots(day, "8am", "18:00", 30, time.Hour)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = GenerateSlots(day, "18:00", "08:00", 30, time.Hour)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestIsAvailableHalfOpenOverlap(t *testing.T) {
	slot := domain.TimeSlot{Start: at(9, 0), End: at(10, 0)}

	blocking := domain.CalendarEvent{EventType: "JOB", StartAt: at(9, 30), EndAt: at(11, 0)}
	assert.False(t, IsAvailable(slot, []domain.CalendarEvent{blocking}))

	// touching boundaries do not conflict
	before := domain.CalendarEvent{EventType: "JOB", StartAt: at(8, 0), EndAt: at(9, 0)}
	after := domain.CalendarEvent{EventType: "JOB", StartAt: at(10, 0), EndAt: at(11, 0)}
	assert.True(t, IsAvailable(slot, []domain.CalendarEvent{before, after}))
}

func TestAvailabilityEventsNeverBlock(t *testing.T) {
	slot := domain.TimeSlot{Start: at(9, 0), End: at(10, 0)}
	availability := domain.CalendarEvent{EventType: "AVAILABILITY", StartAt: at(8, 0), EndAt: at(18, 0), IsAvailability: true}
	assert.True(t, IsAvailable(slot, []domain.CalendarEvent{availability}))
}

func TestOtherDayEventsDoNotBlock(t *testing.T) {
	slot := domain.TimeSlot{Start: at(9, 0), End: at(10, 0)}
	otherDay := domain.CalendarEvent{
		EventType: "JOB",
		StartAt:   at(9, 0).AddDate(0, 0, 1),
		EndAt:     at(10, 0).AddDate(0, 0, 1),
	}
	assert.True(t, IsAvailable(slot, []domain.CalendarEvent{otherDay}))
}

func TestMarkAvailability(t *testing.T) {
	slots, err := GenerateSlots(day, "08:00", "12:00", 60, time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	events := []domain.CalendarEvent{
		{EventType: "JOB", StartAt: at(9, 0), EndAt: at(10, 0)},
	}
	marked := MarkAvailability(slots, events)
	assert.True(t, marked[0].Available)  // 08-09
	assert.False(t, marked[1].Available) // 09-10
	assert.True(t, marked[2].Available)  // 10-11
	assert.True(t, marked[3].Available)  // 11-12
}
