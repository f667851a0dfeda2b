package billing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// scenario: parts [{qty 2, cost 10}], other charges [{5}], 09:00-13:00 at 75/h.
func TestAggregateWorkOrderBreakdown(t *testing.T) {
	wo := domain.WorkOrder{
		TimeIn:     "09:00",
		TimeOut:    "13:00",
		HourlyRate: dec("75"),
		Parts: []domain.Part{
			{Name: "valve", Quantity: 2, UnitCost: dec("10")},
		},
		OtherCharges: []domain.OtherCharge{
			{Description: "disposal", Cost: dec("5")},
		},
	}

	costs, err := AggregateWorkOrder(wo)
	require.NoError(t, err)
	assert.True(t, costs.LaborCost.Equal(dec("300")), "labor %s", costs.LaborCost)
	assert.True(t, costs.PartsCost.Equal(dec("20")), "parts %s", costs.PartsCost)
	assert.True(t, costs.OtherChargesCost.Equal(dec("5")), "other %s", costs.OtherChargesCost)
	assert.True(t, costs.Total.Equal(dec("325")), "total %s", costs.Total)
}

func TestAggregateWorkOrderClampsNegativeLabor(t *testing.T) {
	wo := domain.WorkOrder{TimeIn: "13:00", TimeOut: "09:00", HourlyRate: dec("75")}
	costs, err := AggregateWorkOrder(wo)
	require.NoError(t, err)
	assert.True(t, costs.LaborCost.IsZero())
}

func TestAggregateWorkOrderFractionalHours(t *testing.T) {
	wo := domain.WorkOrder{TimeIn: "09:00", TimeOut: "09:30", HourlyRate: dec("75")}
	costs, err := AggregateWorkOrder(wo)
	require.NoError(t, err)
	assert.True(t, costs.LaborCost.Equal(dec("37.50")), "labor %s", costs.LaborCost)
}

func TestAggregateWorkOrderRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		wo   domain.WorkOrder
	}{
		{"zero quantity", domain.WorkOrder{TimeIn: "09:00", TimeOut: "10:00",
			Parts: []domain.Part{{Name: "x", Quantity: 0, UnitCost: dec("1")}}}},
		{"negative unit cost", domain.WorkOrder{TimeIn: "09:00", TimeOut: "10:00",
			Parts: []domain.Part{{Name: "x", Quantity: 1, UnitCost: dec("-1")}}}},
		{"negative charge", domain.WorkOrder{TimeIn: "09:00", TimeOut: "10:00",
			OtherCharges: []domain.OtherCharge{{Description: "y", Cost: dec("-5")}}}},
		{"malformed time in", domain.WorkOrder{TimeIn: "9am", TimeOut: "10:00"}},
		{"malformed time out", domain.WorkOrder{TimeIn: "09:00", TimeOut: "25:99"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AggregateWorkOrder(tc.wo)
			assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
		})
	}
}

// scenario: one work order at 325, tax 8% -> subtotal 325, tax 26.00, total 351.00.
func TestAggregateInvoiceTotals(t *testing.T) {
	lines := []domain.InvoiceWorkOrder{{WorkOrderID: 1, AdjustedCost: dec("325")}}
	totals, err := AggregateInvoice(lines, nil, dec("8"))
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("325")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(dec("26.00")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(dec("351.00")), "total %s", totals.Total)
}

func TestAggregateInvoiceOrderIndependent(t *testing.T) {
	lines := []domain.InvoiceWorkOrder{
		{WorkOrderID: 1, AdjustedCost: dec("100.33")},
		{WorkOrderID: 2, AdjustedCost: dec("250.10")},
		{WorkOrderID: 3, AdjustedCost: dec("19.99")},
	}
	items := []domain.AdditionalItem{
		{Description: "permit", Amount: dec("45.50")},
		{Description: "travel", Amount: dec("12.25")},
	}

	want, err := AggregateInvoice(lines, items, dec("7.5"))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })
		rng.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
		got, err := AggregateInvoice(lines, items, dec("7.5"))
		require.NoError(t, err)
		assert.True(t, got.Subtotal.Equal(want.Subtotal))
		assert.True(t, got.Tax.Equal(want.Tax))
		assert.True(t, got.Total.Equal(want.Total))
	}
}

func TestAggregateInvoiceRejectsNegatives(t *testing.T) {
	_, err := AggregateInvoice([]domain.InvoiceWorkOrder{{WorkOrderID: 1, AdjustedCost: dec("-1")}}, nil, dec("8"))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = AggregateInvoice(nil, []domain.AdditionalItem{{Description: "x", Amount: dec("-2")}}, dec("8"))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = AggregateInvoice(nil, nil, dec("-1"))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = AggregateInvoice(nil, nil, dec("101"))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}

func TestAggregateInvoiceTaxRounding(t *testing.T) {
	lines := []domain.InvoiceWorkOrder{{WorkOrderID: 1, AdjustedCost: dec("33.33")}}
	totals, err := AggregateInvoice(lines, nil, dec("7"))
	require.NoError(t, err)
	// 33.33 * 0.07 = 2.3331 -> 2.33
	assert.True(t, totals.Tax.Equal(dec("2.33")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(dec("35.66")), "total %s", totals.Total)
}

func TestNormalizeItem(t *testing.T) {
	item, err := NormalizeItem(domain.AdditionalItem{Description: "crane", Quantity: dec("2"), Rate: dec("99.95")})
	require.NoError(t, err)
	assert.True(t, item.Amount.Equal(dec("199.90")), "amount %s", item.Amount)

	_, err = NormalizeItem(domain.AdditionalItem{Description: "bad", Quantity: dec("-1"), Rate: dec("5")})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
