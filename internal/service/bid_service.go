package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/marketplace"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

const bidLockTTL = 5 * time.Second

// TicketLocker serializes bid resolution per ticket across instances. A nil
// locker degrades to the row locks taken inside the resolution transaction.
type TicketLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// BidService coordinates marketplace bidding.
type BidService struct {
	tickets    repository.TicketRepository
	bids       repository.BidRepository
	locker     TicketLocker
	dispatcher events.Dispatcher
}

// BidDependencies bundles collaborators for bid service.
type BidDependencies struct {
	TicketRepo repository.TicketRepository
	BidRepo    repository.BidRepository
	Locker     TicketLocker
	Dispatcher events.Dispatcher
}

// NewBidService creates the service.
func NewBidService(deps BidDependencies) *BidService {
	return &BidService{
		tickets:    deps.TicketRepo,
		bids:       deps.BidRepo,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
	}
}

// PlaceBid records a vendor's offer on a marketplace ticket.
func (s *BidService) PlaceBid(ctx context.Context, actor domain.Actor, ticketID int64, terms marketplace.BidTerms) (*domain.VendorBid, error) {
	if actor.Role != domain.RoleMaintenanceAdmin || actor.VendorID == nil {
		return nil, apperrors.NewPermissionDenied("only vendor admins can place bids")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	existing, err := s.bids.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	bid, err := marketplace.PlaceBid(*ticket, existing, *actor.VendorID, terms, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.bids.Create(ctx, &bid); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishBidEvent(ctx, actor, bid.TicketID, events.EventBidPlaced, events.BidPlacedPayload{
		BidID:       bid.ID,
		VendorID:    bid.VendorID,
		TotalAmount: bid.TotalAmount,
	})
	return &bid, nil
}

// UpdateBid revises the calling vendor's own pending or countered bid.
func (s *BidService) UpdateBid(ctx context.Context, actor domain.Actor, bidID int64, terms marketplace.BidTerms) (*domain.VendorBid, error) {
	if actor.Role != domain.RoleMaintenanceAdmin || actor.VendorID == nil {
		return nil, apperrors.NewPermissionDenied("only vendor admins can update bids")
	}

	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.VendorID != *actor.VendorID {
		return nil, apperrors.NewPermissionDenied("bid belongs to another vendor")
	}

	next, err := marketplace.UpdateBid(*bid, terms, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.bids.Update(ctx, &next); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &next, nil
}

// ListBids returns all bids on a ticket for the organization side, or only
// the calling vendor's bid for vendor accounts.
func (s *BidService) ListBids(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.VendorBid, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	bids, err := s.bids.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	switch actor.Role {
	case domain.RoleOrgAdmin, domain.RoleOrgSubadmin:
		if actor.OrganizationID == nil || *actor.OrganizationID != ticket.OrganizationID {
			return nil, apperrors.NewPermissionDenied("ticket belongs to another organization")
		}
		return bids, nil
	case domain.RoleMaintenanceAdmin:
		if actor.VendorID == nil {
			return nil, apperrors.NewPermissionDenied("vendor account required")
		}
		own := make([]domain.VendorBid, 0, 1)
		for _, bid := range bids {
			if bid.VendorID == *actor.VendorID {
				own = append(own, bid)
			}
		}
		return own, nil
	default:
		return nil, apperrors.NewPermissionDenied("role cannot view bids")
	}
}

// ResolveBid applies an accept/reject/counter decision. Resolution runs under
// a per-ticket lock plus row locks on the ticket's bids, so two admins racing
// to accept different bids serialize and the loser fails the sibling check.
func (s *BidService) ResolveBid(ctx context.Context, actor domain.Actor, bidID int64, decision marketplace.Decision, payload marketplace.ResolvePayload) (*domain.VendorBid, error) {
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, bid.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := requireBidResolver(actor, ticket); err != nil {
		return nil, err
	}

	if s.locker != nil {
		key := fmt.Sprintf("locks:ticket-bids:%d", ticket.ID)
		acquired, err := s.locker.Acquire(ctx, key, bidLockTTL)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !acquired {
			return nil, apperrors.NewConflict("bid resolution already in progress for this ticket",
				map[string]any{"ticket_id": ticket.ID})
		}
		defer func() { _ = s.locker.Release(ctx, key) }()
	}

	var resolved domain.VendorBid
	err = s.bids.WithinTx(ctx, func(tx repository.BidTx) error {
		siblings, err := tx.ListByTicketForUpdate(ctx, ticket.ID)
		if err != nil {
			return err
		}
		var current *domain.VendorBid
		for i := range siblings {
			if siblings[i].ID == bidID {
				current = &siblings[i]
				break
			}
		}
		if current == nil {
			return apperrors.NewNotFound("bid", map[string]any{"bid_id": bidID})
		}

		next, err := marketplace.Resolve(*current, siblings, decision, payload, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		resolved = next
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishBidEvent(ctx, actor, resolved.TicketID, events.EventBidResolved, events.BidResolvedPayload{
		BidID:    resolved.ID,
		VendorID: resolved.VendorID,
		Decision: string(decision),
		Status:   resolved.Status,
	})
	return &resolved, nil
}

func (s *BidService) loadBid(ctx context.Context, bidID int64) (*domain.VendorBid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("bid", map[string]any{"bid_id": bidID})
		}
		return nil, apperrors.MapError(err)
	}
	return bid, nil
}

func (s *BidService) publishBidEvent(ctx context.Context, actor domain.Actor, ticketID int64, eventType events.EventType, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{Role: actor.Role, ID: actorID(actor)},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// requireBidResolver limits decisions to admins of the ticket's organization.
func requireBidResolver(actor domain.Actor, ticket *domain.Ticket) error {
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
	}
	return apperrors.NewPermissionDenied("only organization admins may resolve bids")
}
