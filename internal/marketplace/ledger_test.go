package marketplace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func marketplaceTicket() domain.Ticket {
	return domain.Ticket{ID: 42, OrganizationID: 3, Status: domain.TicketStatusOpen, AssignedToMarketplace: true}
}

func validTerms() BidTerms {
	return BidTerms{
		HourlyRate:        decimal.NewFromInt(75),
		EstimatedHours:    decimal.NewFromInt(4),
		PartsEstimate:     decimal.NewFromInt(50),
		ResponseTimeValue: 2,
		ResponseTimeUnit:  domain.ResponseTimeHours,
	}
}

func TestPlaceBidComputesTotal(t *testing.T) {
	bid, err := PlaceBid(marketplaceTicket(), nil, 9, validTerms(), testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusPending, bid.Status)
	assert.True(t, bid.TotalAmount.Equal(decimal.NewFromInt(350)), "got %s", bid.TotalAmount)
}

func TestPlaceBidOnNonMarketplaceTicket(t *testing.T) {
	ticket := marketplaceTicket()
	ticket.AssignedToMarketplace = false
	_, err := PlaceBid(ticket, nil, 9, validTerms(), testNow)
	assert.Equal(t, "TICKET_NOT_BIDDABLE", apperrors.CodeOf(err))
}

func TestPlaceBidOnResolvedTicket(t *testing.T) {
	existing := []domain.VendorBid{{ID: 1, TicketID: 42, VendorID: 8, Status: domain.BidStatusAccepted}}
	_, err := PlaceBid(marketplaceTicket(), existing, 9, validTerms(), testNow)
	assert.Equal(t, "TICKET_NOT_BIDDABLE", apperrors.CodeOf(err))
}

func TestDuplicateBidPerVendor(t *testing.T) {
	existing := []domain.VendorBid{{ID: 1, TicketID: 42, VendorID: 9, Status: domain.BidStatusPending}}
	_, err := PlaceBid(marketplaceTicket(), existing, 9, validTerms(), testNow)
	assert.Equal(t, "DUPLICATE_BID", apperrors.CodeOf(err))
}

func TestPlaceBidValidatesTerms(t *testing.T) {
	terms := validTerms()
	terms.HourlyRate = decimal.Zero
	_, err := PlaceBid(marketplaceTicket(), nil, 9, terms, testNow)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestUpdateBidResetsCounterToPending(t *testing.T) {
	offer := decimal.NewFromInt(300)
	bid := domain.VendorBid{ID: 1, TicketID: 42, VendorID: 9, Status: domain.BidStatusCounter, CounterOffer: &offer}

	terms := validTerms()
	terms.EstimatedHours = decimal.NewFromInt(5)
	next, err := UpdateBid(bid, terms, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusPending, next.Status)
	assert.Nil(t, next.CounterOffer)
	assert.True(t, next.TotalAmount.Equal(decimal.NewFromInt(425)), "got %s", next.TotalAmount)
}

func TestUpdateResolvedBidFails(t *testing.T) {
	bid := domain.VendorBid{ID: 1, Status: domain.BidStatusAccepted}
	_, err := UpdateBid(bid, validTerms(), testNow)
	assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
}

func TestResolveAccept(t *testing.T) {
	bid := domain.VendorBid{ID: 1, TicketID: 42, VendorID: 9, Status: domain.BidStatusPending}
	next, err := Resolve(bid, []domain.VendorBid{bid}, DecisionAccept, ResolvePayload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusAccepted, next.Status)
}

// scenario: vendor A's bid is accepted, then vendor B's earlier pending bid
// attempts accept and loses.
func TestResolveAcceptConflictsWithSibling(t *testing.T) {
	bidA := domain.VendorBid{ID: 1, TicketID: 42, VendorID: 8, Status: domain.BidStatusAccepted}
	bidB := domain.VendorBid{ID: 2, TicketID: 42, VendorID: 9, Status: domain.BidStatusPending}

	_, err := Resolve(bidB, []domain.VendorBid{bidA, bidB}, DecisionAccept, ResolvePayload{}, testNow)
	assert.Equal(t, "CONCURRENT_BID_CONFLICT", apperrors.CodeOf(err))
}

func TestResolveAcceptLeavesSiblingsUntouched(t *testing.T) {
	bidA := domain.VendorBid{ID: 1, TicketID: 42, VendorID: 8, Status: domain.BidStatusPending}
	bidB := domain.VendorBid{ID: 2, TicketID: 42, VendorID: 9, Status: domain.BidStatusPending}

	accepted, err := Resolve(bidA, []domain.VendorBid{bidA, bidB}, DecisionAccept, ResolvePayload{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusAccepted, accepted.Status)
	assert.Equal(t, domain.BidStatusPending, bidB.Status)
}

func TestResolveRejectRequiresReason(t *testing.T) {
	bid := domain.VendorBid{ID: 1, TicketID: 42, Status: domain.BidStatusPending}

	_, err := Resolve(bid, nil, DecisionReject, ResolvePayload{}, testNow)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	next, err := Resolve(bid, nil, DecisionReject, ResolvePayload{RejectionReason: "rate too high"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusRejected, next.Status)
	require.NotNil(t, next.RejectionReason)
	assert.Equal(t, "rate too high", *next.RejectionReason)
}

func TestResolveCounter(t *testing.T) {
	bid := domain.VendorBid{ID: 1, TicketID: 42, Status: domain.BidStatusPending}
	next, err := Resolve(bid, nil, DecisionCounter, ResolvePayload{
		CounterOffer: decimal.NewFromInt(280),
		CounterNotes: "match last quarter's rate",
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusCounter, next.Status)
	require.NotNil(t, next.CounterOffer)
	assert.True(t, next.CounterOffer.Equal(decimal.NewFromInt(280)))
}

func TestResolveAlreadyResolvedBid(t *testing.T) {
	bid := domain.VendorBid{ID: 1, Status: domain.BidStatusRejected}
	_, err := Resolve(bid, nil, DecisionAccept, ResolvePayload{}, testNow)
	assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
}

func TestAcceptedBidLookup(t *testing.T) {
	bids := []domain.VendorBid{
		{ID: 1, Status: domain.BidStatusPending},
		{ID: 2, Status: domain.BidStatusAccepted},
	}
	found := AcceptedBid(bids)
	require.NotNil(t, found)
	assert.Equal(t, int64(2), found.ID)
	assert.Nil(t, AcceptedBid(bids[:1]))
}
