package domain

import "time"

// TicketHistory is an audit entry recording a ticket mutation.
type TicketHistory struct {
	ID          int64
	TicketID    int64
	ActorRole   Role
	ActorID     *int64
	ChangeType  HistoryChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}

// HistoryChangeType classifies audit entries.
type HistoryChangeType string

const (
	ChangeTypeStatus   HistoryChangeType = "STATUS"
	ChangeTypeAssignee HistoryChangeType = "ASSIGNEE"
	ChangeTypeVendor   HistoryChangeType = "VENDOR"
)
