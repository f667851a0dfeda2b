package service

import (
	"context"
	"errors"
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

// InvoiceService coordinates the invoice workflow and drives the
// billing-state ticket transitions as a system actor.
type InvoiceService struct {
	tickets    repository.TicketRepository
	workOrders repository.WorkOrderRepository
	invoices   repository.InvoiceRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	defaultTax decimal.Decimal
}

// InvoiceDependencies bundles collaborators for invoice service.
type InvoiceDependencies struct {
	TicketRepo           repository.TicketRepository
	WorkOrderRepo        repository.WorkOrderRepository
	InvoiceRepo          repository.InvoiceRepository
	HistoryRepo          repository.TicketHistoryRepository
	Dispatcher           events.Dispatcher
	DefaultTaxPercentage decimal.Decimal
}

// NewInvoiceService creates the service.
func NewInvoiceService(deps InvoiceDependencies) *InvoiceService {
	return &InvoiceService{
		tickets:    deps.TicketRepo,
		workOrders: deps.WorkOrderRepo,
		invoices:   deps.InvoiceRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		defaultTax: deps.DefaultTaxPercentage,
	}
}

// InvoiceCreateInput describes invoice creation. Leaving WorkOrderIDs empty
// pulls in every work order on the ticket; AdjustedCosts overrides individual
// line costs without touching the underlying work orders.
type InvoiceCreateInput struct {
	TicketID        int64
	WorkOrderIDs    []int64
	AdditionalItems []domain.AdditionalItem
	TaxPercentage   *decimal.Decimal
	AdjustedCosts   map[int64]decimal.Decimal
	Notes           *string
}

// Create drafts an invoice from a snapshot of the ticket's work orders.
func (s *InvoiceService) Create(ctx context.Context, actor domain.Actor, input InvoiceCreateInput) (*domain.Invoice, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := requireBillingActor(actor, ticket); err != nil {
		return nil, err
	}

	var workOrders []domain.WorkOrder
	if len(input.WorkOrderIDs) > 0 {
		workOrders, err = s.workOrders.GetByIDs(ctx, input.WorkOrderIDs)
		if err == nil && len(workOrders) != len(input.WorkOrderIDs) {
			return nil, apperrors.NewValidationError("one or more work orders do not exist",
				map[string]any{"requested": len(input.WorkOrderIDs), "found": len(workOrders)})
		}
	} else {
		workOrders, err = s.workOrders.ListByTicket(ctx, input.TicketID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	tax := s.defaultTax
	if input.TaxPercentage != nil {
		tax = *input.TaxPercentage
	}

	invoice, err := billing.NewInvoice(*ticket, workOrders, input.AdditionalItems, tax, input.AdjustedCosts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	invoice.Notes = input.Notes
	if err := s.invoices.Create(ctx, &invoice); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishInvoiceEvent(ctx, actor, &invoice, events.EventInvoiceCreated)
	return &invoice, nil
}

// Send issues a draft invoice to the organization. When the ticket has been
// confirmed by the reporter, sending also advances it to ready-for-billing.
func (s *InvoiceService) Send(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	invoice, ticket, err := s.loadInvoiceAndTicket(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := requireBillingActor(actor, ticket); err != nil {
		return nil, err
	}

	next, err := billing.Send(*invoice, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, &next); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status == domain.TicketStatusConfirmed {
		s.advanceTicket(ctx, ticket, domain.TicketStatusReadyForBilling)
	}

	s.publishInvoiceEvent(ctx, actor, &next, events.EventInvoiceSent)
	return &next, nil
}

// RecordPayment settles a sent invoice and advances the ticket to billed.
func (s *InvoiceService) RecordPayment(ctx context.Context, actor domain.Actor, invoiceID int64, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Invoice, error) {
	invoice, ticket, err := s.loadInvoiceAndTicket(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := requireBillingActor(actor, ticket); err != nil {
		return nil, err
	}

	next, err := billing.RecordPayment(*invoice, method, details, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, &next); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status == domain.TicketStatusReadyForBilling {
		s.advanceTicket(ctx, ticket, domain.TicketStatusBilled)
	}

	s.publishInvoiceEvent(ctx, actor, &next, events.EventInvoicePaid)
	return &next, nil
}

// Get returns an invoice the actor may view.
func (s *InvoiceService) Get(ctx context.Context, actor domain.Actor, invoiceID int64) (*domain.Invoice, error) {
	invoice, ticket, err := s.loadInvoiceAndTicket(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := canViewTicket(actor, ticket); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ListByOrganization pages through the actor's organization invoices.
func (s *InvoiceService) ListByOrganization(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Invoice, error) {
	if actor.OrganizationID == nil {
		return nil, apperrors.NewPermissionDenied("organization account required")
	}
	result, err := s.invoices.ListByOrganization(ctx, *actor.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *InvoiceService) loadInvoiceAndTicket(ctx context.Context, invoiceID int64) (*domain.Invoice, *domain.Ticket, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("invoice", map[string]any{"invoice_id": invoiceID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, invoice.TicketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return invoice, ticket, nil
}

// advanceTicket drives a billing-state edge as the system actor. Failures are
// swallowed: the invoice change already landed and the ticket can be advanced
// again on the next invoice action.
func (s *InvoiceService) advanceTicket(ctx context.Context, ticket *domain.Ticket, to domain.TicketStatus) {
	system := domain.SystemActor()
	next, err := lifecycle.Apply(lifecycle.Snapshot{
		Ticket: *ticket,
		Actor:  system,
		Now:    time.Now().UTC(),
	}, to)
	if err != nil {
		return
	}
	if err := s.tickets.UpdateGuarded(ctx, &next, ticket.UpdatedAt); err != nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   next.ID,
		ActorRole:  system.Role,
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": ticket.Status},
		NewValue:   map[string]any{"status": next.Status},
	}
	_ = s.history.Create(ctx, entry)
	*ticket = next
}

func (s *InvoiceService) publishInvoiceEvent(ctx context.Context, actor domain.Actor, invoice *domain.Invoice, eventType events.EventType) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  invoice.TicketID,
		Actor:     events.Actor{Role: actor.Role, ID: actorID(actor)},
		Timestamp: time.Now().UTC(),
		Payload: events.InvoicePayload{
			InvoiceID: invoice.ID,
			Status:    invoice.Status,
			Total:     invoice.Total,
		},
	})
}

// requireBillingActor limits invoice mutations to the vendor admin on the
// ticket or an organization admin holding the billing permission.
func requireBillingActor(actor domain.Actor, ticket *domain.Ticket) error {
	switch actor.Role {
	case domain.RoleMaintenanceAdmin:
		if ticket.MaintenanceVendorID != nil && actor.VendorID != nil &&
			*actor.VendorID == *ticket.MaintenanceVendorID {
			return nil
		}
	case domain.RoleOrgAdmin:
		if actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID {
			return nil
		}
	case domain.RoleOrgSubadmin:
		if actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID &&
			actor.Has(domain.PermissionManageBilling) {
			return nil
		}
	}
	return apperrors.NewPermissionDenied("account cannot manage billing for this ticket")
}
