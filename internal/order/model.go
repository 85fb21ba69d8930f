package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RevenueStatuses are the statuses that count towards sales figures.
// Unpaid and cancelled orders contribute nothing.
var RevenueStatuses = []Status{StatusPaid, StatusShipped, StatusCompleted}

// Item is a denormalized snapshot of a product at purchase time. It keeps its
// name and price even if the product is later edited or deleted.
type Item struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	Status     Status          `json:"status" db:"status"`
	Items      []Item          `json:"items" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductSales is one row of the per-product sales breakdown.
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SoldQuantity int64           `json:"sold_quantity"`
	SalesAmount  decimal.Decimal `json:"sales_amount"`
}

// Stats is the admin dashboard snapshot. Every field defaults to zero when
// there is no matching data.
type Stats struct {
	TotalSales      decimal.Decimal            `json:"total_sales"`
	TotalOrders     int64                      `json:"total_orders"`
	PaidOrders      int64                      `json:"paid_orders"`
	CountByStatus   map[Status]int64           `json:"count_by_status"`
	SalesByStatus   map[Status]decimal.Decimal `json:"sales_by_status"`
	OrdersThisMonth int64                      `json:"orders_this_month"`
	SalesThisMonth  decimal.Decimal            `json:"sales_this_month"`
	ProductSales    []ProductSales             `json:"product_sales"`
}
