package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	ReporterID          *int64
	OrganizationID      *int64
	MaintenanceVendorID *int64
	AssigneeID          *int64
	Marketplace         *bool
	Statuses            []domain.TicketStatus
	Priorities          []domain.TicketPriority
	Limit               int
	Offset              int
}

// TicketRepository encapsulates ticket persistence. UpdateGuarded applies an
// optimistic concurrency check against the updated_at token read with the
// snapshot, so transitions computed on stale state never land.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateGuarded(ctx context.Context, ticket *domain.Ticket, token time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, reporter_id, organization_id, location_id, maintenance_vendor_id,
               assignee_id, title, description, status, priority, assigned_to_marketplace,
               rejection_reason, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, reporter_id, organization_id, location_id, maintenance_vendor_id,
            assignee_id, title, description, status, priority, assigned_to_marketplace, rejection_reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.ReporterID,
		ticket.OrganizationID,
		ticket.LocationID,
		ticket.MaintenanceVendorID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedToMarketplace,
		ticket.RejectionReason,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) UpdateGuarded(ctx context.Context, ticket *domain.Ticket, token time.Time) error {
	const query = `
        UPDATE tickets SET maintenance_vendor_id=$1, assignee_id=$2, status=$3, priority=$4,
            rejection_reason=$5, updated_at=NOW()
        WHERE id=$6 AND updated_at=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.MaintenanceVendorID,
		ticket.AssigneeID,
		ticket.Status,
		ticket.Priority,
		ticket.RejectionReason,
		ticket.ID,
		token,
	).Scan(&ticket.UpdatedAt)
	if err == pgx.ErrNoRows {
		return apperrors.NewStaleTicketState(ticket.ID)
	}
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.ReporterID,
		&ticket.OrganizationID,
		&ticket.LocationID,
		&ticket.MaintenanceVendorID,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedToMarketplace,
		&ticket.RejectionReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.OrganizationID != nil {
		args = append(args, *filter.OrganizationID)
		clauses = append(clauses, fmt.Sprintf("organization_id=$%d", len(args)))
	}
	if filter.MaintenanceVendorID != nil {
		args = append(args, *filter.MaintenanceVendorID)
		clauses = append(clauses, fmt.Sprintf("maintenance_vendor_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.Marketplace != nil {
		args = append(args, *filter.Marketplace)
		clauses = append(clauses, fmt.Sprintf("assigned_to_marketplace=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.ReporterID,
			&ticket.OrganizationID,
			&ticket.LocationID,
			&ticket.MaintenanceVendorID,
			&ticket.AssigneeID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.AssignedToMarketplace,
			&ticket.RejectionReason,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
