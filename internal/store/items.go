package store

import (
	"context"
	"fmt"
	"time"

	"supplychain/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// ItemStore is the item resource
type ItemStore struct {
	db *gorm.DB
}

// NewItemStore creates a new item repository
func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{db: db}
}

// List returns every item, oldest first
func (s *ItemStore) List(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	if err := s.db.Order("created_at asc, id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Get returns a single item or ErrNotFound
func (s *ItemStore) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := first(s.db, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create assigns a new id and timestamps and inserts the item.
// Any id or timestamps on the input are ignored.
func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	item.ID = uuid.New().String()
	item.CreatedAt = time.Time{}
	item.UpdatedAt = time.Time{}
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces every field of the stored item except id and createdAt
func (s *ItemStore) Update(ctx context.Context, id string, item *models.Item) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		var existing models.Item
		if err := first(tx, id, &existing); err != nil {
			return err
		}
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("failed to update item %s: %w", id, err)
		}
		return nil
	})
}

// Delete removes an item or returns ErrNotFound
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db, id, &models.Item{})
}

// LowStock returns the items whose quantity is at or below threshold
func (s *ItemStore) LowStock(ctx context.Context, threshold int) ([]models.Item, error) {
	items := []models.Item{}
	err := s.db.Where("quantity <= ?", threshold).Order("quantity asc, created_at asc").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	return items, nil
}

// Adjust changes an item's quantity by delta. The result may not go below zero.
func (s *ItemStore) Adjust(ctx context.Context, id string, delta int) (*models.Item, error) {
	var item models.Item
	err := withTx(s.db, func(tx *gorm.DB) error {
		if err := first(tx, id, &item); err != nil {
			return err
		}
		quantity := item.Quantity + delta
		if quantity < 0 {
			return fmt.Errorf("%w: %d on hand, adjustment %d", ErrInsufficientStock, item.Quantity, delta)
		}
		return tx.Model(&item).Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
