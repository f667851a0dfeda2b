package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusAccepted        TicketStatus = "ACCEPTED"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted       TicketStatus = "COMPLETED"
	TicketStatusConfirmed       TicketStatus = "CONFIRMED"
	TicketStatusReadyForBilling TicketStatus = "READY_FOR_BILLING"
	TicketStatusBilled          TicketStatus = "BILLED"
	TicketStatusRejected        TicketStatus = "REJECTED"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for maintenance requests. Tickets are never hard
// deleted; terminal states persist for audit and billing.
type Ticket struct {
	ID                    int64
	ExternalKey           string
	ReporterID            int64
	OrganizationID        int64
	LocationID            *int64
	MaintenanceVendorID   *int64
	AssigneeID            *int64
	Title                 string
	Description           string
	Status                TicketStatus
	Priority              TicketPriority
	AssignedToMarketplace bool
	RejectionReason       *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
