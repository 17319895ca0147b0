package domain

import "time"

type LinkingStatus string

const (
	LinkingPending  LinkingStatus = "pending"
	LinkingAccepted LinkingStatus = "accepted"
	LinkingRejected LinkingStatus = "rejected"
	LinkingUnlinked LinkingStatus = "unlinked"
)

// Linking is a trade relationship between one consumer and one supplier company.
// A partial unique index keeps at most one accepted linking per pair.
type Linking struct {
	ID                 int64         `json:"id" gorm:"primaryKey"`
	ConsumerCompanyID  int64         `json:"consumer_company_id" gorm:"not null;index"`
	SupplierCompanyID  int64         `json:"supplier_company_id" gorm:"not null;index"`
	RequestedByUserID  int64         `json:"requested_by_user_id" gorm:"not null"`
	RespondedByUserID  *int64        `json:"responded_by_user_id,omitempty"`
	AssignedSalesmanID *int64        `json:"assigned_salesman_user_id,omitempty" gorm:"column:assigned_salesman_user_id"`
	Status             LinkingStatus `json:"status" gorm:"not null;default:'pending'"`
	Message            string        `json:"message,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (Linking) TableName() string { return "linkings" }

func (l *Linking) IsAccepted() bool { return l.Status == LinkingAccepted }

// HasSalesman reports whether userID is the supplier-side user assigned to this linking.
func (l *Linking) HasSalesman(userID int64) bool {
	return l.AssignedSalesmanID != nil && *l.AssignedSalesmanID == userID
}

// Involves reports whether the company is either side of the linking.
func (l *Linking) Involves(companyID int64) bool {
	return l.ConsumerCompanyID == companyID || l.SupplierCompanyID == companyID
}
