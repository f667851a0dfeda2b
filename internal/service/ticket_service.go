package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/lifecycle"
	"github.com/spec-kit/maintenance-service/internal/marketplace"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketService coordinates ticket workflows: creation, listing, assignment
// and lifecycle transitions.
type TicketService struct {
	tickets    repository.TicketRepository
	bids       repository.BidRepository
	workOrders repository.WorkOrderRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	BidRepo       repository.BidRepository
	WorkOrderRepo repository.WorkOrderRepository
	HistoryRepo   repository.TicketHistoryRepository
	Dispatcher    events.Dispatcher
}

// NewTicketService creates the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		bids:       deps.BidRepo,
		workOrders: deps.WorkOrderRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title                 string
	Description           string
	Priority              domain.TicketPriority
	LocationID            *int64
	MaintenanceVendorID   *int64
	AssignedToMarketplace bool
}

// TransitionInput carries the transition target plus edge-specific payload.
// WorkOrderID backs the completion edges; RejectionReason backs rejects;
// Confirmed acknowledges reporter confirmation.
type TransitionInput struct {
	To              domain.TicketStatus
	RejectionReason string
	Confirmed       bool
	WorkOrderID     *int64
}

// CreateTicket opens a new ticket for the actor's organization. A ticket is
// routed either to a chosen vendor or to the marketplace, never both.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor.OrganizationID == nil {
		return nil, apperrors.NewPermissionDenied("only organization accounts can open tickets")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.AssignedToMarketplace && input.MaintenanceVendorID != nil {
		return nil, apperrors.NewValidationError("a ticket is routed to a vendor or to the marketplace, not both", nil)
	}
	switch input.Priority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
	case "":
		input.Priority = domain.TicketPriorityMedium
	default:
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		ExternalKey:           generateTicketKey(),
		ReporterID:            actor.ID,
		OrganizationID:        *actor.OrganizationID,
		LocationID:            input.LocationID,
		MaintenanceVendorID:   input.MaintenanceVendorID,
		Title:                 strings.TrimSpace(input.Title),
		Description:           input.Description,
		Status:                domain.TicketStatusOpen,
		Priority:              input.Priority,
		AssignedToMarketplace: input.AssignedToMarketplace,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, ticket.ID, events.EventTicketCreated, events.TicketCreatedPayload{
		OrganizationID: ticket.OrganizationID,
		Priority:       ticket.Priority,
		Marketplace:    ticket.AssignedToMarketplace,
		Title:          ticket.Title,
	})
	return ticket, nil
}

// GetTicket loads a ticket visible to the actor.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets scopes the filter to what the actor may see before querying.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	switch actor.Role {
	case domain.RoleOrgUser:
		filter.ReporterID = &actor.ID
	case domain.RoleOrgAdmin, domain.RoleOrgSubadmin:
		filter.OrganizationID = actor.OrganizationID
	case domain.RoleMaintenanceAdmin:
		filter.MaintenanceVendorID = actor.VendorID
	case domain.RoleTechnician:
		filter.AssigneeID = &actor.ID
	default:
		return nil, apperrors.NewPermissionDenied("role cannot list tickets")
	}

	result, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Transition moves the ticket along one lifecycle edge. The decision is made
// on an explicit snapshot and persisted under an optimistic guard, so two
// racing transitions cannot both land.
func (s *TicketService) Transition(ctx context.Context, actor domain.Actor, ticketID int64, input TransitionInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	token := ticket.UpdatedAt

	snapshot := lifecycle.Snapshot{
		Ticket:          *ticket,
		Actor:           actor,
		RejectionReason: input.RejectionReason,
		Confirmed:       input.Confirmed,
		Now:             time.Now().UTC(),
	}

	if ticket.AssignedToMarketplace && input.To == domain.TicketStatusAccepted {
		bids, err := s.bids.ListByTicket(ctx, ticketID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		snapshot.AcceptedBid = marketplace.AcceptedBid(bids)
	}
	if input.WorkOrderID != nil {
		wo, err := s.workOrders.GetByID(ctx, *input.WorkOrderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("work order", map[string]any{"work_order_id": *input.WorkOrderID})
			}
			return nil, apperrors.MapError(err)
		}
		snapshot.WorkOrder = wo
	}

	next, err := lifecycle.Apply(snapshot, input.To)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.UpdateGuarded(ctx, &next, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordStatusChange(ctx, actor, &next, ticket.Status)
	s.publishEvent(ctx, actor, next.ID, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus: ticket.Status,
		NewStatus: next.Status,
	})
	return &next, nil
}

// AssignTechnician sets the technician responsible for on-site work. Only the
// vendor admin of the assigned vendor may do this, before work starts.
func (s *TicketService) AssignTechnician(ctx context.Context, actor domain.Actor, ticketID, technicianID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleMaintenanceAdmin || actor.VendorID == nil ||
		ticket.MaintenanceVendorID == nil || *actor.VendorID != *ticket.MaintenanceVendorID {
		return nil, apperrors.NewPermissionDenied("only the assigned vendor admin may assign a technician")
	}
	if ticket.Status != domain.TicketStatusAccepted {
		return nil, apperrors.NewConflict("technician can only be assigned on accepted tickets",
			map[string]any{"ticket_id": ticketID, "status": ticket.Status})
	}

	token := ticket.UpdatedAt
	oldAssignee := ticket.AssigneeID
	ticket.AssigneeID = &technicianID
	if err := s.tickets.UpdateGuarded(ctx, ticket, token); err != nil {
		return nil, apperrors.MapError(err)
	}

	entry := &domain.TicketHistory{
		TicketID:   ticket.ID,
		ActorRole:  actor.Role,
		ActorID:    actorID(actor),
		ChangeType: domain.ChangeTypeAssignee,
		OldValue:   map[string]any{"assignee_id": oldAssignee},
		NewValue:   map[string]any{"assignee_id": technicianID},
	}
	_ = s.history.Create(ctx, entry)
	return ticket, nil
}

// History returns the audit trail for a ticket the actor may view.
func (s *TicketService) History(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.TicketHistory, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	result, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, from domain.TicketStatus) {
	entry := &domain.TicketHistory{
		TicketID:   ticket.ID,
		ActorRole:  actor.Role,
		ActorID:    actorID(actor),
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": from},
		NewValue:   map[string]any{"status": ticket.Status},
	}
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, actor domain.Actor, ticketID int64, eventType events.EventType, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{Role: actor.Role, ID: actorID(actor)},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// canViewTicket scopes read access by role.
func canViewTicket(actor domain.Actor, ticket *domain.Ticket) error {
	switch actor.Role {
	case domain.RoleOrgUser:
		if actor.ID == ticket.ReporterID {
			return nil
		}
	case domain.RoleOrgAdmin, domain.RoleOrgSubadmin:
		if actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID {
			return nil
		}
	case domain.RoleMaintenanceAdmin:
		if ticket.MaintenanceVendorID != nil && actor.VendorID != nil &&
			*actor.VendorID == *ticket.MaintenanceVendorID {
			return nil
		}
		if ticket.AssignedToMarketplace {
			return nil
		}
	case domain.RoleTechnician:
		if ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID {
			return nil
		}
	case domain.RoleSystem:
		return nil
	}
	return apperrors.NewPermissionDenied("ticket is not visible to this account")
}

func actorID(actor domain.Actor) *int64 {
	if actor.Role == domain.RoleSystem {
		return nil
	}
	id := actor.ID
	return &id
}

func generateTicketKey() string {
	return "MNT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
