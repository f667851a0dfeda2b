package service

import (
	"context"
	"time"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/scheduling"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// ScheduleService answers availability questions for technician visits.
type ScheduleService struct {
	calendar    repository.CalendarRepository
	windowStart string
	windowEnd   string
	stepMinutes int
}

// ScheduleDependencies bundles collaborators for schedule service.
type ScheduleDependencies struct {
	CalendarRepo repository.CalendarRepository
}

// NewScheduleService creates the service with the configured booking window.
func NewScheduleService(cfg config.SchedulingConfig, deps ScheduleDependencies) *ScheduleService {
	return &ScheduleService{
		calendar:    deps.CalendarRepo,
		windowStart: cfg.WindowStart,
		windowEnd:   cfg.WindowEnd,
		stepMinutes: cfg.StepMinutes,
	}
}

// AvailableSlots enumerates the technician's bookable slots on a date,
// marking each against existing calendar events.
func (s *ScheduleService) AvailableSlots(ctx context.Context, technicianID int64, date time.Time, duration time.Duration) ([]domain.TimeSlot, error) {
	slots, err := scheduling.GenerateSlots(date, s.windowStart, s.windowEnd, s.stepMinutes, duration)
	if err != nil {
		return nil, err
	}

	events, err := s.calendar.ListByTechnicianAndDay(ctx, technicianID, date)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return scheduling.MarkAvailability(slots, events), nil
}

// AddEvent books an appointment or availability block on the technician's
// calendar. The technician themself or their vendor admin may write it.
func (s *ScheduleService) AddEvent(ctx context.Context, actor domain.Actor, event *domain.CalendarEvent) error {
	switch actor.Role {
	case domain.RoleTechnician:
		if actor.ID != event.TechnicianID {
			return apperrors.NewPermissionDenied("technicians may only manage their own calendar")
		}
	case domain.RoleMaintenanceAdmin:
	default:
		return apperrors.NewPermissionDenied("role cannot manage calendars")
	}

	if !event.EndAt.After(event.StartAt) {
		return apperrors.NewValidationError("event end must be after start", nil)
	}
	if err := s.calendar.Create(ctx, event); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
