package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// InvoicesHandler manages invoice endpoints.
type InvoicesHandler struct {
	service *service.InvoiceService
}

// NewInvoicesHandler constructs handler.
func NewInvoicesHandler(invoiceService *service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{service: invoiceService}
}

// Create POST /invoices.
func (h *InvoicesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID <= 0 {
		return apperrors.NewValidationError("ticket_id required", nil)
	}

	invoice, err := h.service.Create(c.Context(), principal.Actor, service.InvoiceCreateInput{
		TicketID:        req.TicketID,
		WorkOrderIDs:    req.WorkOrderIDs,
		AdditionalItems: req.AdditionalItems,
		TaxPercentage:   req.TaxPercentage,
		AdjustedCosts:   req.AdjustedCosts,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

// Get GET /invoices/:id.
func (h *InvoicesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	invoiceID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	invoice, err := h.service.Get(c.Context(), principal.Actor, invoiceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

// List GET /invoices.
func (h *InvoicesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	invoices, err := h.service.ListByOrganization(c.Context(), principal.Actor,
		c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, invoiceResponse(&invoices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Send POST /invoices/:id/send.
func (h *InvoicesHandler) Send(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	invoiceID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	invoice, err := h.service.Send(c.Context(), principal.Actor, invoiceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

// RecordPayment POST /invoices/:id/payments.
func (h *InvoicesHandler) RecordPayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	invoiceID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	invoice, err := h.service.RecordPayment(c.Context(), principal.Actor, invoiceID, req.Method, domain.PaymentDetails{
		CardNumber:    req.CardNumber,
		RoutingNumber: req.RoutingNumber,
		AccountNumber: req.AccountNumber,
		ExternalKind:  req.ExternalKind,
		Reference:     req.Reference,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": invoiceResponse(invoice)})
}

func invoiceResponse(invoice *domain.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:              invoice.ID,
		TicketID:        invoice.TicketID,
		OrganizationID:  invoice.OrganizationID,
		WorkOrders:      invoice.WorkOrders,
		AdditionalItems: invoice.AdditionalItems,
		Subtotal:        invoice.Subtotal,
		TaxPercentage:   invoice.TaxPercentage,
		Tax:             invoice.Tax,
		Total:           invoice.Total,
		Status:          invoice.Status,
		Notes:           invoice.Notes,
		PaymentMethod:   invoice.PaymentMethod,
		PaymentRef:      invoice.PaymentRef,
		CreatedAt:       invoice.CreatedAt,
		UpdatedAt:       invoice.UpdatedAt,
	}
}
