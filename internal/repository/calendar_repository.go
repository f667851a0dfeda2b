package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CalendarRepository stores technician calendar events consulted by the
// time-slot planner.
type CalendarRepository interface {
	Create(ctx context.Context, event *domain.CalendarEvent) error
	ListByTechnicianAndDay(ctx context.Context, technicianID int64, day time.Time) ([]domain.CalendarEvent, error)
}

type calendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository instantiates repository.
func NewCalendarRepository(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepository{pool: pool}
}

func (r *calendarRepository) Create(ctx context.Context, event *domain.CalendarEvent) error {
	const query = `
        INSERT INTO calendar_events (technician_id, event_type, start_at, end_at, is_availability)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		event.TechnicianID,
		event.EventType,
		event.StartAt,
		event.EndAt,
		event.IsAvailability,
	).Scan(&event.ID)
}

func (r *calendarRepository) ListByTechnicianAndDay(ctx context.Context, technicianID int64, day time.Time) ([]domain.CalendarEvent, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	const query = `
        SELECT id, technician_id, event_type, start_at, end_at, is_availability
        FROM calendar_events
        WHERE technician_id=$1 AND start_at < $3 AND end_at > $2
        ORDER BY start_at ASC`
	rows, err := r.pool.Query(ctx, query, technicianID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CalendarEvent
	for rows.Next() {
		var event domain.CalendarEvent
		if err := rows.Scan(
			&event.ID,
			&event.TechnicianID,
			&event.EventType,
			&event.StartAt,
			&event.EndAt,
			&event.IsAvailability,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
