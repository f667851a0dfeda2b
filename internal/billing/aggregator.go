package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

const clockLayout = "15:04"

var minutesPerHour = decimal.NewFromInt(60)

// WorkOrderCosts breaks down a work order's aggregate cost.
type WorkOrderCosts struct {
	PartsCost        decimal.Decimal
	LaborCost        decimal.Decimal
	OtherChargesCost decimal.Decimal
	Total            decimal.Decimal
}

// InvoiceTotals is the reduced money view of an invoice.
type InvoiceTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// AggregateWorkOrder reduces parts, labor and other charges into a cost
// breakdown. Labor hours are computed from same-day wall-clock times; a
// time-out earlier than time-in clamps labor to zero rather than wrapping
// overnight. All inputs are validated before any arithmetic runs.
func AggregateWorkOrder(wo domain.WorkOrder) (WorkOrderCosts, error) {
	if err := validateWorkOrder(wo); err != nil {
		return WorkOrderCosts{}, err
	}

	parts := decimal.Zero
	for _, part := range wo.Parts {
		parts = parts.Add(part.UnitCost.Mul(decimal.NewFromInt(int64(part.Quantity))))
	}

	other := decimal.Zero
	for _, charge := range wo.OtherCharges {
		other = other.Add(charge.Cost)
	}

	labor := laborMinutes(wo.TimeIn, wo.TimeOut).
		Div(minutesPerHour).
		Mul(wo.HourlyRate).
		Round(2)

	parts = parts.Round(2)
	other = other.Round(2)

	return WorkOrderCosts{
		PartsCost:        parts,
		LaborCost:        labor,
		OtherChargesCost: other,
		Total:            parts.Add(labor).Add(other),
	}, nil
}

// AggregateInvoice reduces work-order lines and additional items into
// subtotal, tax and total. The reduction is order-independent: shuffling the
// inputs never changes the result. Tax is rounded to two decimals.
func AggregateInvoice(lines []domain.InvoiceWorkOrder, items []domain.AdditionalItem, taxPercentage decimal.Decimal) (InvoiceTotals, error) {
	if taxPercentage.IsNegative() || taxPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return InvoiceTotals{}, apperrors.NewValidationError("tax percentage must be between 0 and 100",
			map[string]any{"tax_percentage": taxPercentage.String()})
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.AdjustedCost.IsNegative() {
			return InvoiceTotals{}, apperrors.NewValidationError("adjusted cost cannot be negative",
				map[string]any{"work_order_id": line.WorkOrderID})
		}
		subtotal = subtotal.Add(line.AdjustedCost)
	}
	for _, item := range items {
		if item.Amount.IsNegative() {
			return InvoiceTotals{}, apperrors.NewValidationError("additional item amount cannot be negative",
				map[string]any{"description": item.Description})
		}
		subtotal = subtotal.Add(item.Amount)
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxPercentage).Div(decimal.NewFromInt(100)).Round(2)

	return InvoiceTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// NormalizeItem recomputes an additional item's amount from quantity and rate.
func NormalizeItem(item domain.AdditionalItem) (domain.AdditionalItem, error) {
	if item.Quantity.IsNegative() || item.Rate.IsNegative() {
		return domain.AdditionalItem{}, apperrors.NewValidationError("item quantity and rate cannot be negative",
			map[string]any{"description": item.Description})
	}
	item.Amount = item.Quantity.Mul(item.Rate).Round(2)
	return item, nil
}

func validateWorkOrder(wo domain.WorkOrder) error {
	for _, part := range wo.Parts {
		if part.Quantity <= 0 {
			return apperrors.NewValidationError("part quantity must be positive",
				map[string]any{"part": part.Name})
		}
		if part.UnitCost.IsNegative() {
			return apperrors.NewValidationError("part unit cost cannot be negative",
				map[string]any{"part": part.Name})
		}
	}
	for _, charge := range wo.OtherCharges {
		if charge.Cost.IsNegative() {
			return apperrors.NewValidationError("charge cost cannot be negative",
				map[string]any{"charge": charge.Description})
		}
	}
	if wo.HourlyRate.IsNegative() {
		return apperrors.NewValidationError("hourly rate cannot be negative", nil)
	}
	if _, err := time.Parse(clockLayout, wo.TimeIn); err != nil {
		return apperrors.NewValidationError("time_in must be HH:MM", map[string]any{"time_in": wo.TimeIn})
	}
	if _, err := time.Parse(clockLayout, wo.TimeOut); err != nil {
		return apperrors.NewValidationError("time_out must be HH:MM", map[string]any{"time_out": wo.TimeOut})
	}
	return nil
}

// laborMinutes assumes both values already parsed as HH:MM.
func laborMinutes(timeIn, timeOut string) decimal.Decimal {
	in, _ := time.Parse(clockLayout, timeIn)
	out, _ := time.Parse(clockLayout, timeOut)
	minutes := int64(out.Sub(in).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return decimal.NewFromInt(minutes)
}
