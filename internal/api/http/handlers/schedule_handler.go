package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// ScheduleHandler manages technician availability endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: scheduleService}
}

// TimeSlots GET /technicians/:id/time-slots?date=YYYY-MM-DD&duration_hours=1.
func (h *ScheduleHandler) TimeSlots(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	technicianID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	date, err := time.Parse(workDateLayout, c.Query("date"))
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": c.Query("date")})
	}
	durationHours := c.QueryInt("duration_hours", 1)
	if durationHours <= 0 {
		return apperrors.NewValidationError("duration_hours must be positive", nil)
	}

	slots, err := h.service.AvailableSlots(c.Context(), technicianID, date,
		time.Duration(durationHours)*time.Hour)
	if err != nil {
		return err
	}
	items := make([]dto.TimeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, dto.TimeSlotResponse{Start: slot.Start, End: slot.End, Available: slot.Available})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEvent POST /calendar-events.
func (h *ScheduleHandler) CreateEvent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCalendarEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID <= 0 {
		return apperrors.NewValidationError("technician_id required", nil)
	}

	event := &domain.CalendarEvent{
		TechnicianID:   req.TechnicianID,
		EventType:      req.EventType,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		IsAvailability: req.IsAvailability,
	}
	if err := h.service.AddEvent(c.Context(), principal.Actor, event); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": event})
}
