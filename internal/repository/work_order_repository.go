package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// WorkOrderRepository encapsulates work-order persistence. Parts and other
// charges are stored as JSONB line snapshots.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.WorkOrder, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.WorkOrder, error)
}

type workOrderRepository struct {
	pool *pgxpool.Pool
}

// NewWorkOrderRepository instantiates repository.
func NewWorkOrderRepository(pool *pgxpool.Pool) WorkOrderRepository {
	return &workOrderRepository{pool: pool}
}

const workOrderColumns = `id, ticket_id, technician_id, description, completion_status,
               time_in, time_out, work_date, parts, other_charges, hourly_rate, total_cost, created_at`

func (r *workOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	parts, err := json.Marshal(wo.Parts)
	if err != nil {
		return err
	}
	charges, err := json.Marshal(wo.OtherCharges)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO work_orders (ticket_id, technician_id, description, completion_status,
            time_in, time_out, work_date, parts, other_charges, hourly_rate, total_cost)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		wo.TicketID,
		wo.TechnicianID,
		wo.Description,
		wo.CompletionStatus,
		wo.TimeIn,
		wo.TimeOut,
		wo.WorkDate,
		parts,
		charges,
		wo.HourlyRate,
		wo.TotalCost,
	).Scan(&wo.ID, &wo.CreatedAt)
}

func (r *workOrderRepository) GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanWorkOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *workOrderRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func (r *workOrderRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func scanWorkOrders(rows pgx.Rows) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for rows.Next() {
		var wo domain.WorkOrder
		var parts, charges []byte
		if err := rows.Scan(
			&wo.ID,
			&wo.TicketID,
			&wo.TechnicianID,
			&wo.Description,
			&wo.CompletionStatus,
			&wo.TimeIn,
			&wo.TimeOut,
			&wo.WorkDate,
			&parts,
			&charges,
			&wo.HourlyRate,
			&wo.TotalCost,
			&wo.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(parts) > 0 {
			if err := json.Unmarshal(parts, &wo.Parts); err != nil {
				return nil, err
			}
		}
		if len(charges) > 0 {
			if err := json.Unmarshal(charges, &wo.OtherCharges); err != nil {
				return nil, err
			}
		}
		result = append(result, wo)
	}
	return result, rows.Err()
}
