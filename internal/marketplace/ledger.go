package marketplace

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// BidTerms is the vendor-supplied pricing input for a bid.
type BidTerms struct {
	HourlyRate        decimal.Decimal
	EstimatedHours    decimal.Decimal
	PartsEstimate     decimal.Decimal
	ResponseTimeValue int
	ResponseTimeUnit  domain.ResponseTimeUnit
}

// Decision is an explicit admin/vendor action on a bid. Bids are never ranked
// or auto-selected.
type Decision string

const (
	DecisionAccept  Decision = "ACCEPT"
	DecisionReject  Decision = "REJECT"
	DecisionCounter Decision = "COUNTER"
)

// ResolvePayload carries decision-specific input.
type ResolvePayload struct {
	RejectionReason string
	CounterOffer    decimal.Decimal
	CounterNotes    string
}

func validateTerms(terms BidTerms) error {
	if !terms.HourlyRate.IsPositive() {
		return apperrors.NewValidationError("hourly rate must be positive", nil)
	}
	if terms.EstimatedHours.IsNegative() {
		return apperrors.NewValidationError("estimated hours cannot be negative", nil)
	}
	if terms.PartsEstimate.IsNegative() {
		return apperrors.NewValidationError("parts estimate cannot be negative", nil)
	}
	if terms.ResponseTimeValue <= 0 {
		return apperrors.NewValidationError("response time must be positive", nil)
	}
	switch terms.ResponseTimeUnit {
	case domain.ResponseTimeHours, domain.ResponseTimeDays:
	default:
		return apperrors.NewValidationError("unknown response time unit",
			map[string]any{"unit": terms.ResponseTimeUnit})
	}
	return nil
}

func totalAmount(terms BidTerms) decimal.Decimal {
	return terms.HourlyRate.Mul(terms.EstimatedHours).Add(terms.PartsEstimate).Round(2)
}

// PlaceBid validates and constructs a new bid against a snapshot of the
// ticket and its existing bids. A vendor with an existing bid must update it
// instead; a ticket with an accepted bid is already resolved.
func PlaceBid(ticket domain.Ticket, existing []domain.VendorBid, vendorID int64, terms BidTerms, now time.Time) (domain.VendorBid, error) {
	if !ticket.AssignedToMarketplace {
		return domain.VendorBid{}, apperrors.NewTicketNotBiddable(ticket.ID, "ticket is not assigned to the marketplace")
	}
	for _, bid := range existing {
		if bid.Status == domain.BidStatusAccepted {
			return domain.VendorBid{}, apperrors.NewTicketNotBiddable(ticket.ID, "ticket already has an accepted bid")
		}
	}
	for _, bid := range existing {
		if bid.VendorID == vendorID {
			return domain.VendorBid{}, apperrors.NewDuplicateBid(ticket.ID, vendorID)
		}
	}
	if err := validateTerms(terms); err != nil {
		return domain.VendorBid{}, err
	}

	return domain.VendorBid{
		TicketID:          ticket.ID,
		VendorID:          vendorID,
		HourlyRate:        terms.HourlyRate,
		EstimatedHours:    terms.EstimatedHours,
		PartsEstimate:     terms.PartsEstimate,
		ResponseTimeValue: terms.ResponseTimeValue,
		ResponseTimeUnit:  terms.ResponseTimeUnit,
		TotalAmount:       totalAmount(terms),
		Status:            domain.BidStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// UpdateBid revises a bid's terms. Only legal while the bid is pending or
// countered; a countered bid returns to pending so the admin re-reviews it.
func UpdateBid(bid domain.VendorBid, terms BidTerms, now time.Time) (domain.VendorBid, error) {
	if bid.Status != domain.BidStatusPending && bid.Status != domain.BidStatusCounter {
		return domain.VendorBid{}, apperrors.NewConflict("only pending or countered bids can be updated",
			map[string]any{"bid_id": bid.ID, "status": bid.Status})
	}
	if err := validateTerms(terms); err != nil {
		return domain.VendorBid{}, err
	}

	next := bid
	next.HourlyRate = terms.HourlyRate
	next.EstimatedHours = terms.EstimatedHours
	next.PartsEstimate = terms.PartsEstimate
	next.ResponseTimeValue = terms.ResponseTimeValue
	next.ResponseTimeUnit = terms.ResponseTimeUnit
	next.TotalAmount = totalAmount(terms)
	next.Status = domain.BidStatusPending
	next.CounterOffer = nil
	next.CounterNotes = nil
	next.UpdatedAt = now
	return next, nil
}

// Resolve applies an accept/reject/counter decision to a bid. Accepting is
// only legal while no sibling bid on the same ticket is accepted; the caller
// must evaluate this under a per-ticket lock and fail the loser with
// CONCURRENT_BID_CONFLICT. Sibling bids are left untouched on accept; the
// ticket stops being biddable and leftovers are rejected explicitly.
func Resolve(bid domain.VendorBid, siblings []domain.VendorBid, decision Decision, payload ResolvePayload, now time.Time) (domain.VendorBid, error) {
	if bid.Status != domain.BidStatusPending && bid.Status != domain.BidStatusCounter {
		return domain.VendorBid{}, apperrors.NewConflict("bid is already resolved",
			map[string]any{"bid_id": bid.ID, "status": bid.Status})
	}

	next := bid
	next.UpdatedAt = now

	switch decision {
	case DecisionAccept:
		for _, sibling := range siblings {
			if sibling.ID != bid.ID && sibling.Status == domain.BidStatusAccepted {
				return domain.VendorBid{}, apperrors.NewConcurrentBidConflict(bid.TicketID)
			}
		}
		next.Status = domain.BidStatusAccepted
	case DecisionReject:
		reason := strings.TrimSpace(payload.RejectionReason)
		if reason == "" {
			return domain.VendorBid{}, apperrors.NewValidationError("rejection requires a reason", nil)
		}
		next.Status = domain.BidStatusRejected
		next.RejectionReason = &reason
	case DecisionCounter:
		if !payload.CounterOffer.IsPositive() {
			return domain.VendorBid{}, apperrors.NewValidationError("counter offer must be positive", nil)
		}
		offer := payload.CounterOffer.Round(2)
		notes := strings.TrimSpace(payload.CounterNotes)
		next.Status = domain.BidStatusCounter
		next.CounterOffer = &offer
		if notes != "" {
			next.CounterNotes = &notes
		}
	default:
		return domain.VendorBid{}, apperrors.NewValidationError("unknown decision",
			map[string]any{"decision": decision})
	}
	return next, nil
}

// AcceptedBid returns the accepted bid in the list, if any.
func AcceptedBid(bids []domain.VendorBid) *domain.VendorBid {
	for i := range bids {
		if bids[i].Status == domain.BidStatusAccepted {
			return &bids[i]
		}
	}
	return nil
}
