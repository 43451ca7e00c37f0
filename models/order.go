package models

import "time"

// Order represents the orders table
type Order struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ProductID int       `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	OrderDate time.Time `db:"order_date" json:"order_date"`
}
