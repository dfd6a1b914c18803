package database

import (
	"fmt"

	"supplychain/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Seed inserts a starter catalogue when the items table is empty, so a fresh
// dashboard has something in every stock state.
func Seed(db *gorm.DB) (int, error) {
	var count int
	if err := db.Model(&models.Item{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	defaultItems := []models.Item{
		{Name: "Laptop Pro X1", SKU: "LAP-001", Category: "Electronics", Quantity: 15, MinQuantity: 20, Price: decimal.RequireFromString("1299.99"), Supplier: "TechCorp", Location: "Warehouse A"},
		{Name: "Wireless Mouse", SKU: "MOU-002", Category: "Electronics", Quantity: 150, MinQuantity: 50, Price: decimal.RequireFromString("29.99"), Supplier: "TechCorp", Location: "Warehouse A"},
		{Name: "USB-C Cable", SKU: "CAB-003", Category: "Electronics", Quantity: 0, MinQuantity: 100, Price: decimal.RequireFromString("12.99"), Supplier: "CableWorks", Location: "Warehouse B"},
		{Name: "Office Chair", SKU: "CHR-004", Category: "Furniture", Quantity: 45, MinQuantity: 10, Price: decimal.RequireFromString("199.99"), Supplier: "FurniturePlus", Location: "Warehouse C"},
		{Name: "Desk Lamp", SKU: "LMP-005", Category: "Furniture", Quantity: 8, MinQuantity: 8, Price: decimal.RequireFromString("49.99"), Supplier: "FurniturePlus", Location: "Warehouse C"},
	}

	tx := db.Begin()
	for i := range defaultItems {
		defaultItems[i].ID = uuid.New().String()
		if err := tx.Create(&defaultItems[i]).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to seed item %s: %w", defaultItems[i].SKU, err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit seed data: %w", err)
	}
	return len(defaultItems), nil
}
