package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/marketplace"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// BidsHandler manages marketplace bid endpoints.
type BidsHandler struct {
	service *service.BidService
}

// NewBidsHandler constructs handler.
func NewBidsHandler(bidService *service.BidService) *BidsHandler {
	return &BidsHandler{service: bidService}
}

// PlaceBid POST /tickets/:id/bids.
func (h *BidsHandler) PlaceBid(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	bid, err := h.service.PlaceBid(c.Context(), principal.Actor, ticketID, bidTerms(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bidResponse(bid)})
}

// ListBids GET /tickets/:id/bids.
func (h *BidsHandler) ListBids(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	bids, err := h.service.ListBids(c.Context(), principal.Actor, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.BidResponse, 0, len(bids))
	for i := range bids {
		items = append(items, bidResponse(&bids[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateBid PATCH /bids/:id.
func (h *BidsHandler) UpdateBid(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bidID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	bid, err := h.service.UpdateBid(c.Context(), principal.Actor, bidID, bidTerms(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bidResponse(bid)})
}

// ResolveBid POST /bids/:id/resolve.
func (h *BidsHandler) ResolveBid(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bidID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResolveBidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	decision := marketplace.Decision(strings.ToUpper(strings.TrimSpace(req.Decision)))
	bid, err := h.service.ResolveBid(c.Context(), principal.Actor, bidID, decision, marketplace.ResolvePayload{
		RejectionReason: req.RejectionReason,
		CounterOffer:    req.CounterOffer,
		CounterNotes:    req.CounterNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bidResponse(bid)})
}

func bidTerms(req dto.BidRequest) marketplace.BidTerms {
	return marketplace.BidTerms{
		HourlyRate:        req.HourlyRate,
		EstimatedHours:    req.EstimatedHours,
		PartsEstimate:     req.PartsEstimate,
		ResponseTimeValue: req.ResponseTimeValue,
		ResponseTimeUnit:  req.ResponseTimeUnit,
	}
}

func bidResponse(bid *domain.VendorBid) dto.BidResponse {
	return dto.BidResponse{
		ID:                bid.ID,
		TicketID:          bid.TicketID,
		VendorID:          bid.VendorID,
		HourlyRate:        bid.HourlyRate,
		EstimatedHours:    bid.EstimatedHours,
		PartsEstimate:     bid.PartsEstimate,
		ResponseTimeValue: bid.ResponseTimeValue,
		ResponseTimeUnit:  bid.ResponseTimeUnit,
		TotalAmount:       bid.TotalAmount,
		Status:            bid.Status,
		CounterOffer:      bid.CounterOffer,
		CounterNotes:      bid.CounterNotes,
		RejectionReason:   bid.RejectionReason,
		CreatedAt:         bid.CreatedAt,
		UpdatedAt:         bid.UpdatedAt,
	}
}
