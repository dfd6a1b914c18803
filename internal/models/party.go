package models

import "time"

// Customer represents a buyer that places orders
type Customer struct {
	ID        string    `json:"id" gorm:"primary_key"`
	Name      string    `json:"name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"required"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name regardless of gorm's pluralization rules
func (Customer) TableName() string {
	return "customers"
}

// Supplier represents a vendor that items are sourced from.
// Items refer to suppliers by name only; nothing enforces the link.
type Supplier struct {
	ID        string    `json:"id" gorm:"primary_key"`
	Name      string    `json:"name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"required"`
	Address   string    `json:"address"`
	Company   string    `json:"company" binding:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the table name regardless of gorm's pluralization rules
func (Supplier) TableName() string {
	return "suppliers"
}
