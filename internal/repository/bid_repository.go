package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// BidRepository encapsulates marketplace bid persistence. Resolution runs
// inside a transaction with the ticket's bid rows locked, so two concurrent
// accepts serialize and the loser re-checks against the winner's row.
type BidRepository interface {
	Create(ctx context.Context, bid *domain.VendorBid) error
	Update(ctx context.Context, bid *domain.VendorBid) error
	GetByID(ctx context.Context, id int64) (*domain.VendorBid, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.VendorBid, error)
	WithinTx(ctx context.Context, fn func(tx BidTx) error) error
}

// BidTx exposes the bid operations available inside a resolution transaction.
type BidTx interface {
	ListByTicketForUpdate(ctx context.Context, ticketID int64) ([]domain.VendorBid, error)
	Update(ctx context.Context, bid *domain.VendorBid) error
}

type bidRepository struct {
	pool *pgxpool.Pool
}

// NewBidRepository instantiates repository.
func NewBidRepository(pool *pgxpool.Pool) BidRepository {
	return &bidRepository{pool: pool}
}

const bidColumns = `id, ticket_id, vendor_id, hourly_rate, estimated_hours, parts_estimate,
               response_time_value, response_time_unit, total_amount, status,
               counter_offer, counter_notes, rejection_reason, created_at, updated_at`

func (r *bidRepository) Create(ctx context.Context, bid *domain.VendorBid) error {
	const query = `
        INSERT INTO vendor_bids (ticket_id, vendor_id, hourly_rate, estimated_hours, parts_estimate,
            response_time_value, response_time_unit, total_amount, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		bid.TicketID,
		bid.VendorID,
		bid.HourlyRate,
		bid.EstimatedHours,
		bid.PartsEstimate,
		bid.ResponseTimeValue,
		bid.ResponseTimeUnit,
		bid.TotalAmount,
		bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
}

func (r *bidRepository) Update(ctx context.Context, bid *domain.VendorBid) error {
	return updateBid(ctx, r.pool, bid)
}

func (r *bidRepository) GetByID(ctx context.Context, id int64) (*domain.VendorBid, error) {
	query := `SELECT ` + bidColumns + ` FROM vendor_bids WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanBids(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *bidRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.VendorBid, error) {
	query := `SELECT ` + bidColumns + ` FROM vendor_bids WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBids(rows)
}

func (r *bidRepository) WithinTx(ctx context.Context, fn func(tx BidTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&bidTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type bidTx struct {
	tx pgx.Tx
}

func (t *bidTx) ListByTicketForUpdate(ctx context.Context, ticketID int64) ([]domain.VendorBid, error) {
	query := `SELECT ` + bidColumns + ` FROM vendor_bids WHERE ticket_id=$1 ORDER BY id FOR UPDATE`
	rows, err := t.tx.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBids(rows)
}

func (t *bidTx) Update(ctx context.Context, bid *domain.VendorBid) error {
	return updateBid(ctx, t.tx, bid)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func updateBid(ctx context.Context, q rowQuerier, bid *domain.VendorBid) error {
	const query = `
        UPDATE vendor_bids SET hourly_rate=$1, estimated_hours=$2, parts_estimate=$3,
            response_time_value=$4, response_time_unit=$5, total_amount=$6, status=$7,
            counter_offer=$8, counter_notes=$9, rejection_reason=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return q.QueryRow(ctx, query,
		bid.HourlyRate,
		bid.EstimatedHours,
		bid.PartsEstimate,
		bid.ResponseTimeValue,
		bid.ResponseTimeUnit,
		bid.TotalAmount,
		bid.Status,
		bid.CounterOffer,
		bid.CounterNotes,
		bid.RejectionReason,
		bid.ID,
	).Scan(&bid.UpdatedAt)
}

func scanBids(rows pgx.Rows) ([]domain.VendorBid, error) {
	var result []domain.VendorBid
	for rows.Next() {
		var bid domain.VendorBid
		if err := rows.Scan(
			&bid.ID,
			&bid.TicketID,
			&bid.VendorID,
			&bid.HourlyRate,
			&bid.EstimatedHours,
			&bid.PartsEstimate,
			&bid.ResponseTimeValue,
			&bid.ResponseTimeUnit,
			&bid.TotalAmount,
			&bid.Status,
			&bid.CounterOffer,
			&bid.CounterNotes,
			&bid.RejectionReason,
			&bid.CreatedAt,
			&bid.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, bid)
	}
	return result, rows.Err()
}
