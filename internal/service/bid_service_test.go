package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/marketplace"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

func newBidService(tickets *fakeTicketRepo, bids *fakeBidRepo, locker TicketLocker) *BidService {
	return NewBidService(BidDependencies{
		TicketRepo: tickets,
		BidRepo:    bids,
		Locker:     locker,
		Dispatcher: events.NewInMemoryDispatcher(nil),
	})
}

func vendorAdmin(vendorID int64) domain.Actor {
	return domain.Actor{ID: 20, Role: domain.RoleMaintenanceAdmin, VendorID: ptrInt64(vendorID)}
}

func marketplaceTicket(tickets *fakeTicketRepo) domain.Ticket {
	return tickets.put(domain.Ticket{
		ReporterID:            3,
		OrganizationID:        1,
		Status:                domain.TicketStatusOpen,
		AssignedToMarketplace: true,
	})
}

func standardTerms() marketplace.BidTerms {
	return marketplace.BidTerms{
		HourlyRate:        decimal.NewFromInt(80),
		EstimatedHours:    decimal.NewFromInt(3),
		PartsEstimate:     decimal.NewFromInt(50),
		ResponseTimeValue: 4,
		ResponseTimeUnit:  domain.ResponseTimeHours,
	}
}

func TestPlaceBidRequiresVendorAdmin(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newBidService(tickets, newFakeBidRepo(), newFakeLocker())
	ticket := marketplaceTicket(tickets)

	_, err := svc.PlaceBid(context.Background(), orgAdmin(1), ticket.ID, standardTerms())
	require.Equal(t, "PERMISSION_DENIED", apperrors.CodeOf(err))
}

func TestPlaceBidComputesTotal(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newBidService(tickets, newFakeBidRepo(), newFakeLocker())
	ticket := marketplaceTicket(tickets)

	bid, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)
	require.Equal(t, domain.BidStatusPending, bid.Status)
	require.True(t, decimal.NewFromInt(290).Equal(bid.TotalAmount))
}

func TestPlaceBidDuplicateVendor(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newBidService(tickets, newFakeBidRepo(), newFakeLocker())
	ticket := marketplaceTicket(tickets)

	_, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)
	_, err = svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.Equal(t, "DUPLICATE_BID", apperrors.CodeOf(err))
}

func TestUpdateBidOwnershipEnforced(t *testing.T) {
	tickets := newFakeTicketRepo()
	bids := newFakeBidRepo()
	svc := newBidService(tickets, bids, newFakeLocker())
	ticket := marketplaceTicket(tickets)

	bid, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)

	_, err = svc.UpdateBid(context.Background(), vendorAdmin(8), bid.ID, standardTerms())
	require.Equal(t, "PERMISSION_DENIED", apperrors.CodeOf(err))

	terms := standardTerms()
	terms.EstimatedHours = decimal.NewFromInt(5)
	updated, err := svc.UpdateBid(context.Background(), vendorAdmin(7), bid.ID, terms)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(450).Equal(updated.TotalAmount))
}

func TestResolveAcceptThenSiblingConflicts(t *testing.T) {
	tickets := newFakeTicketRepo()
	bids := newFakeBidRepo()
	svc := newBidService(tickets, bids, newFakeLocker())
	ticket := marketplaceTicket(tickets)

	first, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)
	second, err := svc.PlaceBid(context.Background(), vendorAdmin(8), ticket.ID, standardTerms())
	require.NoError(t, err)

	accepted, err := svc.ResolveBid(context.Background(), orgAdmin(1), first.ID, marketplace.DecisionAccept, marketplace.ResolvePayload{})
	require.NoError(t, err)
	require.Equal(t, domain.BidStatusAccepted, accepted.Status)

	_, err = svc.ResolveBid(context.Background(), orgAdmin(1), second.ID, marketplace.DecisionAccept, marketplace.ResolvePayload{})
	require.Equal(t, "CONCURRENT_BID_CONFLICT", apperrors.CodeOf(err))

	// The losing bid is left pending; an explicit reject still works.
	rejected, err := svc.ResolveBid(context.Background(), orgAdmin(1), second.ID, marketplace.DecisionReject,
		marketplace.ResolvePayload{RejectionReason: "went with another vendor"})
	require.NoError(t, err)
	require.Equal(t, domain.BidStatusRejected, rejected.Status)
}

func TestResolveLockContention(t *testing.T) {
	tickets := newFakeTicketRepo()
	bids := newFakeBidRepo()
	locker := newFakeLocker()
	svc := newBidService(tickets, bids, locker)
	ticket := marketplaceTicket(tickets)

	bid, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)

	locker.blocked = true
	_, err = svc.ResolveBid(context.Background(), orgAdmin(1), bid.ID, marketplace.DecisionAccept, marketplace.ResolvePayload{})
	require.Equal(t, "CONFLICT", apperrors.CodeOf(err))
}

func TestResolveRequiresOrgAdmin(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newBidService(tickets, newFakeBidRepo(), newFakeLocker())
	ticket := marketplaceTicket(tickets)

	bid, err := svc.PlaceBid(context.Background(), vendorAdmin(7), ticket.ID, standardTerms())
	require.NoError(t, err)

	_, err = svc.ResolveBid(context.Background(), vendorAdmin(7), bid.ID, marketplace.DecisionAccept, marketplace.ResolvePayload{})
	require.Equal(t, "PERMISSION_DENIED", apperrors.CodeOf(err))

	subadmin := domain.Actor{ID: 11, Role: domain.RoleOrgSubadmin, OrganizationID: ptrInt64(1),
		Permissions: []domain.Permission{domain.PermissionAcceptTicket}}
	resolved, err := svc.ResolveBid(context.Background(), subadmin, bid.ID, marketplace.DecisionCounter,
		marketplace.ResolvePayload{CounterOffer: decimal.NewFromInt(250)})
	require.NoError(t, err)
	require.Equal(t, domain.BidStatusCounter, resolved.Status)
}
