package domain

import "time"

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintEscalated  ComplaintStatus = "escalated"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintClosed     ComplaintStatus = "closed"
)

type Complaint struct {
	ID                   int64           `json:"id" gorm:"primaryKey"`
	OrderID              int64           `json:"order_id" gorm:"not null;index"`
	AssignedSalesmanID   int64           `json:"assigned_to_salesman_id" gorm:"column:assigned_to_salesman_id;not null;index"`
	EscalatedToManagerID *int64          `json:"escalated_to_manager_id,omitempty" gorm:"index"`
	Status               ComplaintStatus `json:"status" gorm:"not null;default:'open';index"`
	Description          string          `json:"description" gorm:"not null"`
	ResolutionNotes      *string         `json:"resolution_notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (Complaint) TableName() string { return "complaints" }

func (c *Complaint) IsClaimed() bool { return c.EscalatedToManagerID != nil }

func (c *Complaint) ClaimedBy(userID int64) bool {
	return c.EscalatedToManagerID != nil && *c.EscalatedToManagerID == userID
}

// ComplaintHistory is append-only: one row per successful transition.
type ComplaintHistory struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	ComplaintID     int64           `json:"complaint_id" gorm:"not null;index"`
	ChangedByUserID int64           `json:"changed_by_user_id" gorm:"not null"`
	NewStatus       ComplaintStatus `json:"new_status" gorm:"not null"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (ComplaintHistory) TableName() string { return "complaint_history" }
