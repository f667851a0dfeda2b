package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Priority              domain.TicketPriority `json:"priority"`
	LocationID            *int64                `json:"location_id"`
	MaintenanceVendorID   *int64                `json:"maintenance_vendor_id"`
	AssignedToMarketplace bool                  `json:"assigned_to_marketplace"`
}

// TransitionRequest payload for POST /tickets/:id/transition.
type TransitionRequest struct {
	To              domain.TicketStatus `json:"to"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Confirmed       bool                `json:"confirmed,omitempty"`
	WorkOrderID     *int64              `json:"work_order_id,omitempty"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID                    int64                 `json:"id"`
	ExternalKey           string                `json:"external_key"`
	ReporterID            int64                 `json:"reporter_id"`
	OrganizationID        int64                 `json:"organization_id"`
	LocationID            *int64                `json:"location_id,omitempty"`
	MaintenanceVendorID   *int64                `json:"maintenance_vendor_id,omitempty"`
	AssigneeID            *int64                `json:"assignee_id,omitempty"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	AssignedToMarketplace bool                  `json:"assigned_to_marketplace"`
	RejectionReason       *string               `json:"rejection_reason,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         int64                    `json:"id"`
	ActorRole  domain.Role              `json:"actor_role"`
	ActorID    *int64                   `json:"actor_id,omitempty"`
	ChangeType domain.HistoryChangeType `json:"change_type"`
	OldValue   map[string]any           `json:"old_value"`
	NewValue   map[string]any           `json:"new_value"`
	CreatedAt  time.Time                `json:"created_at"`
}
