package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

func newWorkOrderService(tickets *fakeTicketRepo, workOrders *fakeWorkOrderRepo, history *fakeHistoryRepo) *WorkOrderService {
	return NewWorkOrderService(WorkOrderDependencies{
		TicketRepo:    tickets,
		WorkOrderRepo: workOrders,
		HistoryRepo:   history,
		Dispatcher:    events.NewInMemoryDispatcher(nil),
	})
}

func inProgressTicket(tickets *fakeTicketRepo, technicianID int64) domain.Ticket {
	return tickets.put(domain.Ticket{
		ReporterID:          3,
		OrganizationID:      1,
		MaintenanceVendorID: ptrInt64(7),
		AssigneeID:          ptrInt64(technicianID),
		Status:              domain.TicketStatusInProgress,
	})
}

func technician(id int64) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleTechnician, VendorID: ptrInt64(7)}
}

func completedInput() WorkOrderInput {
	return WorkOrderInput{
		Description:      "Replaced compressor relay",
		CompletionStatus: domain.CompletionStatusCompleted,
		TimeIn:           "09:00",
		TimeOut:          "12:00",
		WorkDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Parts: []domain.Part{
			{Name: "relay", Quantity: 2, UnitCost: decimal.NewFromInt(10)},
		},
		OtherCharges: []domain.OtherCharge{
			{Description: "parking", Cost: decimal.NewFromInt(5)},
		},
		HourlyRate: decimal.NewFromInt(100),
	}
}

func TestSubmitCompletesTicketAndDerivesCost(t *testing.T) {
	tickets := newFakeTicketRepo()
	workOrders := newFakeWorkOrderRepo()
	history := &fakeHistoryRepo{}
	svc := newWorkOrderService(tickets, workOrders, history)
	ticket := inProgressTicket(tickets, 55)

	wo, err := svc.Submit(context.Background(), technician(55), ticket.ID, completedInput())
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(325).Equal(wo.TotalCost), wo.TotalCost.String())

	updated, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, updated.Status)

	entries, _ := history.ListByTicket(context.Background(), ticket.ID)
	require.Len(t, entries, 1)
}

func TestSubmitReturnNeededKeepsTicketInProgress(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newWorkOrderService(tickets, newFakeWorkOrderRepo(), &fakeHistoryRepo{})
	ticket := inProgressTicket(tickets, 55)

	input := completedInput()
	input.CompletionStatus = domain.CompletionStatusReturnNeeded
	wo, err := svc.Submit(context.Background(), technician(55), ticket.ID, input)
	require.NoError(t, err)
	require.Equal(t, domain.CompletionStatusReturnNeeded, wo.CompletionStatus)

	updated, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)

	// A second visit that finishes the job closes the loop.
	wo2, err := svc.Submit(context.Background(), technician(55), ticket.ID, completedInput())
	require.NoError(t, err)
	require.Equal(t, domain.CompletionStatusCompleted, wo2.CompletionStatus)

	updated, err = tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, updated.Status)
}

func TestSubmitRejectsWrongTechnician(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newWorkOrderService(tickets, newFakeWorkOrderRepo(), &fakeHistoryRepo{})
	ticket := inProgressTicket(tickets, 55)

	_, err := svc.Submit(context.Background(), technician(56), ticket.ID, completedInput())
	require.Equal(t, "PERMISSION_DENIED", apperrors.CodeOf(err))
}

func TestSubmitRejectsWrongStatus(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newWorkOrderService(tickets, newFakeWorkOrderRepo(), &fakeHistoryRepo{})
	ticket := tickets.put(domain.Ticket{
		ReporterID:          3,
		OrganizationID:      1,
		MaintenanceVendorID: ptrInt64(7),
		AssigneeID:          ptrInt64(55),
		Status:              domain.TicketStatusAccepted,
	})

	_, err := svc.Submit(context.Background(), technician(55), ticket.ID, completedInput())
	require.Equal(t, "CONFLICT", apperrors.CodeOf(err))
}

func TestSubmitRejectsBadClockValues(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newWorkOrderService(tickets, newFakeWorkOrderRepo(), &fakeHistoryRepo{})
	ticket := inProgressTicket(tickets, 55)

	input := completedInput()
	input.TimeIn = "9am"
	_, err := svc.Submit(context.Background(), technician(55), ticket.ID, input)
	require.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
