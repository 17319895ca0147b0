package domain

import "time"

type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type CompanyType string

const (
	CompanySupplier CompanyType = "supplier"
	CompanyConsumer CompanyType = "consumer"
)

type CompanyStatus string

const (
	CompanyActive    CompanyStatus = "active"
	CompanySuspended CompanyStatus = "suspended"
)

// Company is either a supplier or a consumer on the marketplace
type Company struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null"`
	Type        CompanyType   `json:"company_type" gorm:"column:company_type;not null"`
	Status      CompanyStatus `json:"status" gorm:"not null;default:'active'"`
	Description string        `json:"description,omitempty"`
	LogoURL     string        `json:"logo_url,omitempty"`
	Location    string        `json:"location"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (Company) TableName() string { return "companies" }

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	CompanyID    int64      `json:"company_id" gorm:"not null;index"`
	Role         UserRole   `json:"role" gorm:"not null"`
	Status       UserStatus `json:"status" gorm:"not null;default:'active'"`
	FirstName    string     `json:"first_name" gorm:"not null"`
	LastName     string     `json:"last_name" gorm:"not null"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex"`
	PhoneNumber  string     `json:"phone_number" gorm:"not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"column:hashed_password;not null"`
	Locale       string     `json:"locale" gorm:"not null;default:'en'"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsManagerOrOwner reports whether the user holds a supervisory role in their company.
func (u *User) IsManagerOrOwner() bool {
	return u.Role == RoleManager || u.Role == RoleOwner
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}
