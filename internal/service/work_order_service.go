package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/billing"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/lifecycle"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// WorkOrderService records on-site work and drives the completion edges of
// the ticket lifecycle in the same call.
type WorkOrderService struct {
	tickets    repository.TicketRepository
	workOrders repository.WorkOrderRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// WorkOrderDependencies bundles collaborators for work-order service.
type WorkOrderDependencies struct {
	TicketRepo    repository.TicketRepository
	WorkOrderRepo repository.WorkOrderRepository
	HistoryRepo   repository.TicketHistoryRepository
	Dispatcher    events.Dispatcher
}

// NewWorkOrderService creates the service.
func NewWorkOrderService(deps WorkOrderDependencies) *WorkOrderService {
	return &WorkOrderService{
		tickets:    deps.TicketRepo,
		workOrders: deps.WorkOrderRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// WorkOrderInput describes a technician's submission. TotalCost is always
// derived server side from parts, labor and other charges.
type WorkOrderInput struct {
	Description      string
	CompletionStatus domain.CompletionStatus
	TimeIn           string
	TimeOut          string
	WorkDate         time.Time
	Parts            []domain.Part
	OtherCharges     []domain.OtherCharge
	HourlyRate       decimal.Decimal
}

// Submit validates, costs and persists a work order, then moves the ticket
// to completed or back through the return loop depending on the completion
// status. The ticket update is guarded so a concurrent transition loses.
func (s *WorkOrderService) Submit(ctx context.Context, actor domain.Actor, ticketID int64, input WorkOrderInput) (*domain.WorkOrder, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if actor.Role != domain.RoleTechnician || ticket.AssigneeID == nil || *ticket.AssigneeID != actor.ID {
		return nil, apperrors.NewPermissionDenied("only the assigned technician may submit work orders")
	}
	if ticket.Status != domain.TicketStatusInProgress {
		return nil, apperrors.NewConflict("work orders can only be submitted while work is in progress",
			map[string]any{"ticket_id": ticketID, "status": ticket.Status})
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	switch input.CompletionStatus {
	case domain.CompletionStatusCompleted, domain.CompletionStatusReturnNeeded:
	default:
		return nil, apperrors.NewValidationError("unknown completion status",
			map[string]any{"completion_status": input.CompletionStatus})
	}

	wo := domain.WorkOrder{
		TicketID:         ticketID,
		TechnicianID:     actor.ID,
		Description:      strings.TrimSpace(input.Description),
		CompletionStatus: input.CompletionStatus,
		TimeIn:           input.TimeIn,
		TimeOut:          input.TimeOut,
		WorkDate:         input.WorkDate,
		Parts:            input.Parts,
		OtherCharges:     input.OtherCharges,
		HourlyRate:       input.HourlyRate,
	}
	costs, err := billing.AggregateWorkOrder(wo)
	if err != nil {
		return nil, err
	}
	wo.TotalCost = costs.Total

	token := ticket.UpdatedAt
	target := domain.TicketStatusCompleted
	if wo.CompletionStatus == domain.CompletionStatusReturnNeeded {
		target = domain.TicketStatusInProgress
	}
	next, err := lifecycle.Apply(lifecycle.Snapshot{
		Ticket:    *ticket,
		Actor:     actor,
		WorkOrder: &wo,
		Now:       time.Now().UTC(),
	}, target)
	if err != nil {
		return nil, err
	}

	if err := s.workOrders.Create(ctx, &wo); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.UpdateGuarded(ctx, &next, token); err != nil {
		return nil, apperrors.MapError(err)
	}

	if next.Status != ticket.Status {
		entry := &domain.TicketHistory{
			TicketID:   next.ID,
			ActorRole:  actor.Role,
			ActorID:    actorID(actor),
			ChangeType: domain.ChangeTypeStatus,
			OldValue:   map[string]any{"status": ticket.Status},
			NewValue:   map[string]any{"status": next.Status},
		}
		_ = s.history.Create(ctx, entry)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventWorkOrderSubmitted,
		TicketID:  ticketID,
		Actor:     events.Actor{Role: actor.Role, ID: actorID(actor)},
		Timestamp: time.Now().UTC(),
		Payload: events.WorkOrderSubmittedPayload{
			WorkOrderID:      wo.ID,
			TechnicianID:     wo.TechnicianID,
			CompletionStatus: wo.CompletionStatus,
			TotalCost:        wo.TotalCost,
		},
	})
	return &wo, nil
}

// ListByTicket returns the ticket's work orders for any account that can see
// the ticket.
func (s *WorkOrderService) ListByTicket(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.WorkOrder, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	result, err := s.workOrders.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
