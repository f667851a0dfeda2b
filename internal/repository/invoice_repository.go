package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// InvoiceRepository encapsulates invoice persistence. Work-order lines and
// additional items are stored as JSONB snapshots taken at creation time.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Invoice, error)
}

type invoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository instantiates repository.
func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

const invoiceColumns = `id, ticket_id, organization_id, work_orders, additional_items,
               subtotal, tax_percentage, tax, total, status, notes,
               payment_method, payment_ref, created_at, updated_at`

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	lines, err := json.Marshal(invoice.WorkOrders)
	if err != nil {
		return err
	}
	items, err := json.Marshal(invoice.AdditionalItems)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO invoices (ticket_id, organization_id, work_orders, additional_items,
            subtotal, tax_percentage, tax, total, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		invoice.TicketID,
		invoice.OrganizationID,
		lines,
		items,
		invoice.Subtotal,
		invoice.TaxPercentage,
		invoice.Tax,
		invoice.Total,
		invoice.Status,
		invoice.Notes,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
        UPDATE invoices SET status=$1, notes=$2, payment_method=$3, payment_ref=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		invoice.Status,
		invoice.Notes,
		invoice.PaymentMethod,
		invoice.PaymentRef,
		invoice.ID,
	).Scan(&invoice.UpdatedAt)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *invoiceRepository) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE organization_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func scanInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	var result []domain.Invoice
	for rows.Next() {
		var invoice domain.Invoice
		var lines, items []byte
		if err := rows.Scan(
			&invoice.ID,
			&invoice.TicketID,
			&invoice.OrganizationID,
			&lines,
			&items,
			&invoice.Subtotal,
			&invoice.TaxPercentage,
			&invoice.Tax,
			&invoice.Total,
			&invoice.Status,
			&invoice.Notes,
			&invoice.PaymentMethod,
			&invoice.PaymentRef,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(lines) > 0 {
			if err := json.Unmarshal(lines, &invoice.WorkOrders); err != nil {
				return nil, err
			}
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &invoice.AdditionalItems); err != nil {
				return nil, err
			}
		}
		result = append(result, invoice)
	}
	return result, rows.Err()
}
