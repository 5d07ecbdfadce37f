package models

import "github.com/shopspring/decimal"

const (
	OrderStatusPending  = "Pending"
	OrderStatusComplete = "Complete"
)

type PaymentContact struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
}

type OrderRequest struct {
	CartID     string          `json:"cart_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Payment    PaymentContact  `json:"payment"`
}

// OrderAck is the backend's acknowledgment of a created order.
type OrderAck struct {
	OrderID ID     `json:"order_id" validate:"required"`
	Status  string `json:"order_status"`
}

type OrderItem struct {
	DishName string `json:"dish_name"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	OrderID    ID              `json:"order_id" validate:"required"`
	OrderTime  string          `json:"order_time"`
	TableNo    ID              `json:"table_no"`
	Status     string          `json:"order_status" validate:"required"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []OrderItem     `json:"order_items"`
}

type OrderStatusInput struct {
	Status string `json:"order_status" binding:"required,oneof=Pending Complete"`
}

type DailyIncome struct {
	Day    string          `json:"day" validate:"required"`
	Income decimal.Decimal `json:"income"`
}

type DashboardStats struct {
	DailyCompletedOrders int64           `json:"dailyCompletedOrders"`
	PendingOrders        int64           `json:"pendingOrders"`
	DailyIncome          decimal.Decimal `json:"dailyIncome"`
	WeeklyIncome         []DailyIncome   `json:"weeklyIncome"`
}
