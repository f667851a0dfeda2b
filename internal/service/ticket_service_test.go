package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

func repositoryFilter() repository.TicketFilter {
	return repository.TicketFilter{Limit: 50}
}

func newTicketService(tickets *fakeTicketRepo, bids *fakeBidRepo, history *fakeHistoryRepo) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:    tickets,
		BidRepo:       bids,
		WorkOrderRepo: newFakeWorkOrderRepo(),
		HistoryRepo:   history,
		Dispatcher:    events.NewInMemoryDispatcher(nil),
	})
}

func orgAdmin(orgID int64) domain.Actor {
	return domain.Actor{ID: 10, Role: domain.RoleOrgAdmin, OrganizationID: ptrInt64(orgID)}
}

func TestCreateTicketRejectsVendorAndMarketplace(t *testing.T) {
	svc := newTicketService(newFakeTicketRepo(), newFakeBidRepo(), &fakeHistoryRepo{})

	_, err := svc.CreateTicket(context.Background(), orgAdmin(1), TicketCreateInput{
		Title:                 "Leaking faucet",
		Description:           "Kitchen sink",
		MaintenanceVendorID:   ptrInt64(7),
		AssignedToMarketplace: true,
	})
	require.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestCreateTicketGeneratesKeyAndDefaults(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newTicketService(tickets, newFakeBidRepo(), &fakeHistoryRepo{})

	ticket, err := svc.CreateTicket(context.Background(), orgAdmin(1), TicketCreateInput{
		Title:       "Broken HVAC",
		Description: "Unit on roof is down",
	})
	require.NoError(t, err)
	require.Regexp(t, `^MNT-[0-9A-F]{8}$`, ticket.ExternalKey)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.Equal(t, int64(1), ticket.OrganizationID)
}

func TestTransitionAcceptVendorTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	svc := newTicketService(tickets, newFakeBidRepo(), history)

	stored := tickets.put(domain.Ticket{
		ReporterID:          3,
		OrganizationID:      1,
		MaintenanceVendorID: ptrInt64(7),
		Status:              domain.TicketStatusOpen,
	})

	ticket, err := svc.Transition(context.Background(), orgAdmin(1), stored.ID, TransitionInput{
		To: domain.TicketStatusAccepted,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusAccepted, ticket.Status)

	entries, err := history.ListByTicket(context.Background(), stored.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ChangeTypeStatus, entries[0].ChangeType)
	require.Equal(t, string(domain.TicketStatusAccepted), entries[0].NewValue["status"].(string))
}

func TestTransitionMarketplaceAcceptNeedsAcceptedBid(t *testing.T) {
	tickets := newFakeTicketRepo()
	bids := newFakeBidRepo()
	svc := newTicketService(tickets, bids, &fakeHistoryRepo{})

	stored := tickets.put(domain.Ticket{
		ReporterID:            3,
		OrganizationID:        1,
		Status:                domain.TicketStatusOpen,
		AssignedToMarketplace: true,
	})

	_, err := svc.Transition(context.Background(), orgAdmin(1), stored.ID, TransitionInput{
		To: domain.TicketStatusAccepted,
	})
	require.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	accepted := domain.VendorBid{TicketID: stored.ID, VendorID: 42, Status: domain.BidStatusAccepted}
	require.NoError(t, bids.Create(context.Background(), &accepted))

	ticket, err := svc.Transition(context.Background(), orgAdmin(1), stored.ID, TransitionInput{
		To: domain.TicketStatusAccepted,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.MaintenanceVendorID)
	require.Equal(t, int64(42), *ticket.MaintenanceVendorID)
}

func TestTransitionStaleStateLoses(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newTicketService(tickets, newFakeBidRepo(), &fakeHistoryRepo{})

	stored := tickets.put(domain.Ticket{
		ReporterID:          3,
		OrganizationID:      1,
		MaintenanceVendorID: ptrInt64(7),
		Status:              domain.TicketStatusOpen,
	})

	// A concurrent writer lands between the snapshot read and the update.
	tickets.afterGet = func(repo *fakeTicketRepo) {
		ticket := repo.tickets[stored.ID]
		ticket.UpdatedAt = ticket.UpdatedAt.Add(time.Millisecond)
		repo.tickets[stored.ID] = ticket
	}

	_, err := svc.Transition(context.Background(), orgAdmin(1), stored.ID, TransitionInput{
		To: domain.TicketStatusAccepted,
	})
	require.Equal(t, "STALE_TICKET_STATE", apperrors.CodeOf(err))
}

func TestTransitionUnknownEdge(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newTicketService(tickets, newFakeBidRepo(), &fakeHistoryRepo{})

	stored := tickets.put(domain.Ticket{
		ReporterID:     3,
		OrganizationID: 1,
		Status:         domain.TicketStatusOpen,
	})

	_, err := svc.Transition(context.Background(), orgAdmin(1), stored.ID, TransitionInput{
		To: domain.TicketStatusBilled,
	})
	require.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))
}

func TestAssignTechnician(t *testing.T) {
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	svc := newTicketService(tickets, newFakeBidRepo(), history)

	stored := tickets.put(domain.Ticket{
		ReporterID:          3,
		OrganizationID:      1,
		MaintenanceVendorID: ptrInt64(7),
		Status:              domain.TicketStatusAccepted,
	})
	vendorAdmin := domain.Actor{ID: 20, Role: domain.RoleMaintenanceAdmin, VendorID: ptrInt64(7)}

	ticket, err := svc.AssignTechnician(context.Background(), vendorAdmin, stored.ID, 55)
	require.NoError(t, err)
	require.Equal(t, int64(55), *ticket.AssigneeID)

	entries, _ := history.ListByTicket(context.Background(), stored.ID)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ChangeTypeAssignee, entries[0].ChangeType)

	otherVendor := domain.Actor{ID: 21, Role: domain.RoleMaintenanceAdmin, VendorID: ptrInt64(8)}
	_, err = svc.AssignTechnician(context.Background(), otherVendor, stored.ID, 56)
	require.Equal(t, "PERMISSION_DENIED", apperrors.CodeOf(err))
}

func TestListTicketsScopesByRole(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newTicketService(tickets, newFakeBidRepo(), &fakeHistoryRepo{})

	tickets.put(domain.Ticket{ReporterID: 3, OrganizationID: 1, Status: domain.TicketStatusOpen})
	tickets.put(domain.Ticket{ReporterID: 4, OrganizationID: 2, Status: domain.TicketStatusOpen})

	reporter := domain.Actor{ID: 3, Role: domain.RoleOrgUser, OrganizationID: ptrInt64(1)}
	mine, err := svc.ListTickets(context.Background(), reporter, repositoryFilter())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, int64(3), mine[0].ReporterID)

	org, err := svc.ListTickets(context.Background(), orgAdmin(2), repositoryFilter())
	require.NoError(t, err)
	require.Len(t, org, 1)
	require.Equal(t, int64(2), org[0].OrganizationID)
}
