package domain

import "time"

type OrderStatus string

const (
	OrderCreated    OrderStatus = "created"
	OrderProcessing OrderStatus = "processing"
	OrderShipping   OrderStatus = "shipping"
	OrderCompleted  OrderStatus = "completed"
	// OrderRejected is only reachable through complaint resolution.
	OrderRejected OrderStatus = "rejected"
)

// ParseOrderStatus accepts the statuses a supplier may set directly.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderCreated, OrderProcessing, OrderShipping, OrderCompleted:
		return st, true
	}
	return "", false
}

type Product struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	CompanyID     int64     `json:"company_id" gorm:"not null;index"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description,omitempty"`
	PictureURL    string    `json:"picture_url,omitempty"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null;default:0"`
	RetailPrice   int64     `json:"retail_price" gorm:"not null"`
	Threshold     *int      `json:"threshold,omitempty"`
	BulkPrice     *int64    `json:"bulk_price,omitempty"`
	MinimumOrder  int       `json:"minimum_order" gorm:"not null;default:1"`
	Unit          string    `json:"unit" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Order belongs to one linking. TotalPrice is computed once at creation.
type Order struct {
	ID              int64       `json:"id" gorm:"primaryKey"`
	LinkingID       int64       `json:"linking_id" gorm:"not null;index"`
	ConsumerStaffID int64       `json:"consumer_staff_id" gorm:"not null;index"`
	TotalPrice      int64       `json:"total_price" gorm:"not null"`
	Status          OrderStatus `json:"status" gorm:"not null;default:'created'"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	LineItems []OrderLineItem `json:"line_items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderLineItem keeps the unit price frozen at order time.
type OrderLineItem struct {
	OrderID   int64 `json:"order_id" gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	Quantity  int   `json:"quantity" gorm:"column:product_quantity;not null"`
	UnitPrice int64 `json:"price" gorm:"column:product_price;not null"`
}

func (OrderLineItem) TableName() string { return "order_products" }
