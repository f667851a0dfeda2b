package lifecycle

import (
	"strings"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// Snapshot is the explicit state a transition decision is evaluated against.
// The engine performs no I/O; callers load the ticket and its related records
// and persist the result under an optimistic concurrency guard.
type Snapshot struct {
	Ticket          domain.Ticket
	Actor           domain.Actor
	WorkOrder       *domain.WorkOrder
	AcceptedBid     *domain.VendorBid
	RejectionReason string
	Confirmed       bool
	Now             time.Time
}

type edge struct {
	from domain.TicketStatus
	to   domain.TicketStatus
}

// guard validates actor and payload for an edge that exists in the table.
// Returning nil means the transition is legal.
type guard func(s Snapshot) error

var transitions = map[edge]guard{
	{domain.TicketStatusOpen, domain.TicketStatusAccepted}:             guardAccept,
	{domain.TicketStatusOpen, domain.TicketStatusRejected}:             guardReject,
	{domain.TicketStatusAccepted, domain.TicketStatusRejected}:         guardReject,
	{domain.TicketStatusAccepted, domain.TicketStatusInProgress}:       guardStartWork,
	{domain.TicketStatusInProgress, domain.TicketStatusCompleted}:      guardComplete,
	{domain.TicketStatusInProgress, domain.TicketStatusInProgress}:     guardReturnNeeded,
	{domain.TicketStatusCompleted, domain.TicketStatusConfirmed}:       guardConfirm,
	{domain.TicketStatusConfirmed, domain.TicketStatusReadyForBilling}: guardSystem,
	{domain.TicketStatusReadyForBilling, domain.TicketStatusBilled}:    guardSystem,
}

// CanTransition reports whether the snapshot permits moving the ticket to the
// target status. An actor who holds no transition leaving the current status
// fails with PERMISSION_DENIED whatever the target; an authorized actor
// requesting an edge outside the table fails with INVALID_TRANSITION, as does
// anyone leaving a terminal status. Known edges attempted by a disallowed
// actor fail with PERMISSION_DENIED; legal actors with incomplete payloads
// fail validation.
func CanTransition(s Snapshot, to domain.TicketStatus) error {
	g, ok := transitions[edge{s.Ticket.Status, to}]
	if !ok {
		if !IsTerminal(s.Ticket.Status) && !holdsOutboundEdge(s) {
			return apperrors.NewPermissionDenied(
				"actor holds no transitions from " + string(s.Ticket.Status))
		}
		return apperrors.NewInvalidTransition(string(s.Ticket.Status), string(to))
	}
	return g(s)
}

// holdsOutboundEdge reports whether the actor passes the role check of at
// least one transition leaving the ticket's current status. Guards failing
// only on payload (missing reason, work order, acknowledgement) still count.
func holdsOutboundEdge(s Snapshot) bool {
	for e, g := range transitions {
		if e.from != s.Ticket.Status {
			continue
		}
		if err := g(s); apperrors.CodeOf(err) != "PERMISSION_DENIED" {
			return true
		}
	}
	return false
}

// Apply returns the next ticket record for a legal transition. It is pure:
// the input ticket is not mutated and no side effects occur.
func Apply(s Snapshot, to domain.TicketStatus) (domain.Ticket, error) {
	if err := CanTransition(s, to); err != nil {
		return domain.Ticket{}, err
	}

	next := s.Ticket
	next.Status = to
	next.UpdatedAt = s.Now

	switch to {
	case domain.TicketStatusAccepted:
		if s.Ticket.AssignedToMarketplace && s.AcceptedBid != nil {
			vendorID := s.AcceptedBid.VendorID
			next.MaintenanceVendorID = &vendorID
		}
	case domain.TicketStatusRejected:
		reason := strings.TrimSpace(s.RejectionReason)
		next.RejectionReason = &reason
	}
	return next, nil
}

// canAcceptOrReject covers the org/vendor admin actor set shared by the
// accept and reject edges.
func canAcceptOrReject(s Snapshot) error {
	actor := s.Actor
	ticket := s.Ticket

	switch actor.Role {
	case domain.RoleOrgAdmin:
		if actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID {
			return nil
		}
	case domain.RoleOrgSubadmin:
		if actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID &&
			actor.Has(domain.PermissionAcceptTicket) {
			return nil
		}
	case domain.RoleMaintenanceAdmin:
		if ticket.MaintenanceVendorID != nil && actor.VendorID != nil &&
			*actor.VendorID == *ticket.MaintenanceVendorID {
			return nil
		}
	}
	return apperrors.NewPermissionDenied("actor cannot accept or reject this ticket")
}

func guardAccept(s Snapshot) error {
	if err := canAcceptOrReject(s); err != nil {
		return err
	}
	if s.Ticket.AssignedToMarketplace {
		bid := s.AcceptedBid
		if bid == nil || bid.Status != domain.BidStatusAccepted || bid.TicketID != s.Ticket.ID {
			return apperrors.NewValidationError("marketplace ticket requires an accepted bid before acceptance",
				map[string]any{"ticket_id": s.Ticket.ID})
		}
	}
	return nil
}

func guardReject(s Snapshot) error {
	if err := canAcceptOrReject(s); err != nil {
		return err
	}
	if strings.TrimSpace(s.RejectionReason) == "" {
		return apperrors.NewValidationError("rejection requires a reason", nil)
	}
	return nil
}

func assignedTechnician(s Snapshot) error {
	if s.Actor.Role != domain.RoleTechnician {
		return apperrors.NewPermissionDenied("only the assigned technician may perform this transition")
	}
	if s.Ticket.AssigneeID == nil || *s.Ticket.AssigneeID != s.Actor.ID {
		return apperrors.NewPermissionDenied("ticket is not assigned to this technician")
	}
	return nil
}

func guardStartWork(s Snapshot) error {
	return assignedTechnician(s)
}

func guardComplete(s Snapshot) error {
	if err := assignedTechnician(s); err != nil {
		return err
	}
	wo := s.WorkOrder
	if wo == nil || wo.CompletionStatus != domain.CompletionStatusCompleted {
		return apperrors.NewValidationError("completion requires a completed work order in the same call", nil)
	}
	if wo.TicketID != 0 && wo.TicketID != s.Ticket.ID {
		return apperrors.NewValidationError("work order does not belong to this ticket", nil)
	}
	return nil
}

func guardReturnNeeded(s Snapshot) error {
	if err := assignedTechnician(s); err != nil {
		return err
	}
	wo := s.WorkOrder
	if wo == nil || wo.CompletionStatus != domain.CompletionStatusReturnNeeded {
		return apperrors.NewValidationError("the return loop requires a return-needed work order", nil)
	}
	return nil
}

func guardConfirm(s Snapshot) error {
	actor := s.Actor
	ticket := s.Ticket

	allowed := actor.ID == ticket.ReporterID
	if !allowed {
		switch actor.Role {
		case domain.RoleOrgAdmin:
			allowed = actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID
		case domain.RoleOrgSubadmin:
			allowed = actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID &&
				actor.Has(domain.PermissionAcceptTicket)
		}
	}
	if !allowed {
		return apperrors.NewPermissionDenied("only the reporter or an authorized admin may confirm")
	}
	if !s.Confirmed {
		return apperrors.NewValidationError("confirmation requires explicit acknowledgement", nil)
	}
	return nil
}

func guardSystem(s Snapshot) error {
	if s.Actor.Role != domain.RoleSystem {
		return apperrors.NewPermissionDenied("billing-state transitions are system driven")
	}
	return nil
}

// Statuses returns every status the engine knows, in lifecycle order. Used by
// transition-table exhaustiveness tests and by handlers validating input.
func Statuses() []domain.TicketStatus {
	return []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusAccepted,
		domain.TicketStatusInProgress,
		domain.TicketStatusCompleted,
		domain.TicketStatusConfirmed,
		domain.TicketStatusReadyForBilling,
		domain.TicketStatusBilled,
		domain.TicketStatusRejected,
	}
}

// IsTerminal reports whether no edges leave the given status.
func IsTerminal(status domain.TicketStatus) bool {
	for e := range transitions {
		if e.from == status {
			return false
		}
	}
	return true
}
