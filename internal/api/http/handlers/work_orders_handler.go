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

const workDateLayout = "2006-01-02"

// WorkOrdersHandler manages technician work-order endpoints.
type WorkOrdersHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrdersHandler constructs handler.
func NewWorkOrdersHandler(workOrderService *service.WorkOrderService) *WorkOrdersHandler {
	return &WorkOrdersHandler{service: workOrderService}
}

// Submit POST /tickets/:id/work-orders.
func (h *WorkOrdersHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.WorkOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	workDate, err := time.Parse(workDateLayout, req.WorkDate)
	if err != nil {
		return apperrors.NewValidationError("work_date must be YYYY-MM-DD",
			map[string]any{"work_date": req.WorkDate})
	}

	wo, err := h.service.Submit(c.Context(), principal.Actor, ticketID, service.WorkOrderInput{
		Description:      req.Description,
		CompletionStatus: req.CompletionStatus,
		TimeIn:           req.TimeIn,
		TimeOut:          req.TimeOut,
		WorkDate:         workDate,
		Parts:            req.Parts,
		OtherCharges:     req.OtherCharges,
		HourlyRate:       req.HourlyRate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": workOrderResponse(wo)})
}

// ListByTicket GET /tickets/:id/work-orders.
func (h *WorkOrdersHandler) ListByTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	workOrders, err := h.service.ListByTicket(c.Context(), principal.Actor, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.WorkOrderResponse, 0, len(workOrders))
	for i := range workOrders {
		items = append(items, workOrderResponse(&workOrders[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func workOrderResponse(wo *domain.WorkOrder) dto.WorkOrderResponse {
	return dto.WorkOrderResponse{
		ID:               wo.ID,
		TicketID:         wo.TicketID,
		TechnicianID:     wo.TechnicianID,
		Description:      wo.Description,
		CompletionStatus: wo.CompletionStatus,
		TimeIn:           wo.TimeIn,
		TimeOut:          wo.TimeOut,
		WorkDate:         wo.WorkDate.Format(workDateLayout),
		Parts:            wo.Parts,
		OtherCharges:     wo.OtherCharges,
		HourlyRate:       wo.HourlyRate,
		TotalCost:        wo.TotalCost,
		CreatedAt:        wo.CreatedAt,
	}
}
