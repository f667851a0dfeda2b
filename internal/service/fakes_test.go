package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets  map[int64]domain.Ticket
	nextID   int64
	afterGet func(repo *fakeTicketRepo)
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]domain.Ticket), nextID: 1}
}

func (r *fakeTicketRepo) put(ticket domain.Ticket) domain.Ticket {
	if ticket.ID == 0 {
		ticket.ID = r.nextID
		r.nextID++
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	r.tickets[ticket.ID] = ticket
	return ticket
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	now := time.Now().UTC().Truncate(time.Microsecond)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) UpdateGuarded(ctx context.Context, ticket *domain.Ticket, token time.Time) error {
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(token) {
		return apperrors.NewStaleTicketState(ticket.ID)
	}
	ticket.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if r.afterGet != nil {
		hook := r.afterGet
		r.afterGet = nil
		defer hook(r)
	}
	copied := stored
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.OrganizationID != nil && ticket.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.MaintenanceVendorID != nil &&
			(ticket.MaintenanceVendorID == nil || *ticket.MaintenanceVendorID != *filter.MaintenanceVendorID) {
			continue
		}
		if filter.AssigneeID != nil &&
			(ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

type fakeBidRepo struct {
	bids   map[int64]domain.VendorBid
	nextID int64
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{bids: make(map[int64]domain.VendorBid), nextID: 1}
}

func (r *fakeBidRepo) Create(ctx context.Context, bid *domain.VendorBid) error {
	bid.ID = r.nextID
	r.nextID++
	r.bids[bid.ID] = *bid
	return nil
}

func (r *fakeBidRepo) Update(ctx context.Context, bid *domain.VendorBid) error {
	if _, ok := r.bids[bid.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.bids[bid.ID] = *bid
	return nil
}

func (r *fakeBidRepo) GetByID(ctx context.Context, id int64) (*domain.VendorBid, error) {
	stored, ok := r.bids[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeBidRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.VendorBid, error) {
	var result []domain.VendorBid
	for id := int64(1); id < r.nextID; id++ {
		if bid, ok := r.bids[id]; ok && bid.TicketID == ticketID {
			result = append(result, bid)
		}
	}
	return result, nil
}

func (r *fakeBidRepo) WithinTx(ctx context.Context, fn func(tx repository.BidTx) error) error {
	return fn(r)
}

func (r *fakeBidRepo) ListByTicketForUpdate(ctx context.Context, ticketID int64) ([]domain.VendorBid, error) {
	return r.ListByTicket(ctx, ticketID)
}

type fakeWorkOrderRepo struct {
	workOrders map[int64]domain.WorkOrder
	nextID     int64
}

func newFakeWorkOrderRepo() *fakeWorkOrderRepo {
	return &fakeWorkOrderRepo{workOrders: make(map[int64]domain.WorkOrder), nextID: 1}
}

func (r *fakeWorkOrderRepo) Create(ctx context.Context, wo *domain.WorkOrder) error {
	wo.ID = r.nextID
	r.nextID++
	wo.CreatedAt = time.Now().UTC()
	r.workOrders[wo.ID] = *wo
	return nil
}

func (r *fakeWorkOrderRepo) GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	stored, ok := r.workOrders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeWorkOrderRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for _, id := range ids {
		if wo, ok := r.workOrders[id]; ok {
			result = append(result, wo)
		}
	}
	return result, nil
}

func (r *fakeWorkOrderRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for id := int64(1); id < r.nextID; id++ {
		if wo, ok := r.workOrders[id]; ok && wo.TicketID == ticketID {
			result = append(result, wo)
		}
	}
	return result, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(ctx context.Context, history *domain.TicketHistory) error {
	history.ID = int64(len(r.entries) + 1)
	history.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeInvoiceRepo struct {
	invoices map[int64]domain.Invoice
	nextID   int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[int64]domain.Invoice), nextID: 1}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	invoice.ID = r.nextID
	r.nextID++
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if _, ok := r.invoices[invoice.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	stored, ok := r.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeInvoiceRepo) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Invoice, error) {
	var result []domain.Invoice
	for id := int64(1); id < r.nextID; id++ {
		if invoice, ok := r.invoices[id]; ok && invoice.OrganizationID == organizationID {
			result = append(result, invoice)
		}
	}
	return result, nil
}

type fakeLocker struct {
	held    map[string]bool
	blocked bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.blocked || l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	delete(l.held, key)
	return nil
}

func ptrInt64(v int64) *int64 { return &v }
