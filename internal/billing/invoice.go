package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// billableStatuses are the ticket states an invoice may be drafted from.
var billableStatuses = map[domain.TicketStatus]struct{}{
	domain.TicketStatusCompleted:       {},
	domain.TicketStatusConfirmed:       {},
	domain.TicketStatusReadyForBilling: {},
}

// NewInvoice builds a draft invoice from a snapshot of the ticket's work
// orders. Per-invoice adjusted costs override individual work-order totals
// without mutating the work orders themselves; omitted entries default to the
// work order's own aggregate total.
func NewInvoice(ticket domain.Ticket, workOrders []domain.WorkOrder, items []domain.AdditionalItem, taxPercentage decimal.Decimal, adjusted map[int64]decimal.Decimal, now time.Time) (domain.Invoice, error) {
	if len(workOrders) == 0 {
		return domain.Invoice{}, apperrors.NewNoWorkOrders(ticket.ID)
	}
	if _, ok := billableStatuses[ticket.Status]; !ok {
		return domain.Invoice{}, apperrors.NewTicketNotBillable(ticket.ID, string(ticket.Status))
	}

	lines := make([]domain.InvoiceWorkOrder, 0, len(workOrders))
	for _, wo := range workOrders {
		if wo.TicketID != ticket.ID {
			return domain.Invoice{}, apperrors.NewValidationError("work order does not belong to the ticket",
				map[string]any{"work_order_id": wo.ID, "ticket_id": ticket.ID})
		}
		cost := wo.TotalCost
		if override, ok := adjusted[wo.ID]; ok {
			if override.IsNegative() {
				return domain.Invoice{}, apperrors.NewValidationError("adjusted cost cannot be negative",
					map[string]any{"work_order_id": wo.ID})
			}
			cost = override.Round(2)
		}
		lines = append(lines, domain.InvoiceWorkOrder{WorkOrderID: wo.ID, AdjustedCost: cost})
	}

	normalized := make([]domain.AdditionalItem, 0, len(items))
	for _, item := range items {
		n, err := NormalizeItem(item)
		if err != nil {
			return domain.Invoice{}, err
		}
		normalized = append(normalized, n)
	}

	totals, err := AggregateInvoice(lines, normalized, taxPercentage)
	if err != nil {
		return domain.Invoice{}, err
	}

	return domain.Invoice{
		TicketID:        ticket.ID,
		OrganizationID:  ticket.OrganizationID,
		WorkOrders:      lines,
		AdditionalItems: normalized,
		Subtotal:        totals.Subtotal,
		TaxPercentage:   taxPercentage,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          domain.InvoiceStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Send moves a draft invoice to sent.
func Send(invoice domain.Invoice, now time.Time) (domain.Invoice, error) {
	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.Invoice{}, apperrors.NewAlreadySent(invoice.ID, string(invoice.Status))
	}
	next := invoice
	next.Status = domain.InvoiceStatusSent
	next.UpdatedAt = now
	return next, nil
}

// RecordPayment moves a sent invoice to paid after validating the shape of
// the payment details. Settlement itself happens outside this core.
func RecordPayment(invoice domain.Invoice, method domain.PaymentMethod, details domain.PaymentDetails, now time.Time) (domain.Invoice, error) {
	if invoice.Status != domain.InvoiceStatusSent {
		return domain.Invoice{}, apperrors.NewConflict("only sent invoices can be paid",
			map[string]any{"invoice_id": invoice.ID, "status": invoice.Status})
	}
	reference, err := validatePayment(method, details)
	if err != nil {
		return domain.Invoice{}, err
	}

	next := invoice
	next.Status = domain.InvoiceStatusPaid
	next.PaymentMethod = &method
	if reference != "" {
		next.PaymentRef = &reference
	}
	next.UpdatedAt = now
	return next, nil
}

func validatePayment(method domain.PaymentMethod, details domain.PaymentDetails) (string, error) {
	switch method {
	case domain.PaymentMethodCreditCard:
		digits := strings.ReplaceAll(strings.ReplaceAll(details.CardNumber, " ", ""), "-", "")
		if !allDigits(digits) || len(digits) < 13 || len(digits) > 19 {
			return "", apperrors.NewValidationError("card number must be 13-19 digits", nil)
		}
		return "", nil
	case domain.PaymentMethodACH:
		if !validRoutingNumber(details.RoutingNumber) {
			return "", apperrors.NewValidationError("routing number must be 9 digits with a valid checksum", nil)
		}
		if !allDigits(details.AccountNumber) || len(details.AccountNumber) < 4 || len(details.AccountNumber) > 17 {
			return "", apperrors.NewValidationError("account number must be 4-17 digits", nil)
		}
		return "", nil
	case domain.PaymentMethodExternal:
		kind := strings.TrimSpace(details.ExternalKind)
		reference := strings.TrimSpace(details.Reference)
		if kind == "" {
			return "", apperrors.NewValidationError("external payment requires a kind (check, wire)", nil)
		}
		if reference == "" {
			return "", apperrors.NewValidationError("external payment requires a reference",
				map[string]any{"kind": kind})
		}
		return kind + ":" + reference, nil
	default:
		return "", apperrors.NewValidationError("unknown payment method", map[string]any{"method": method})
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validRoutingNumber applies the ABA checksum: 3(d1+d4+d7)+7(d2+d5+d8)+(d3+d6+d9) mod 10 == 0.
func validRoutingNumber(s string) bool {
	if len(s) != 9 || !allDigits(s) {
		return false
	}
	weights := [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	sum := 0
	for i, r := range s {
		sum += int(r-'0') * weights[i]
	}
	return sum%10 == 0
}
