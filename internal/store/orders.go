package store

import (
	"context"
	"fmt"
	"time"

	"supplychain/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// OrderStore is the order resource
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore creates a new order repository
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// List returns every order, newest order date first
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	list := []models.Order{}
	if err := s.db.Order("order_date desc, created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return list, nil
}

// Get returns a single order or ErrNotFound
func (s *OrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := first(s.db, id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create assigns a new id and inserts the order
func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	o.ID = uuid.New().String()
	o.CreatedAt = time.Time{}
	o.UpdatedAt = time.Time{}
	if err := s.db.Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update replaces the stored order. Any status may be written.
func (s *OrderStore) Update(ctx context.Context, id string, o *models.Order) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		var existing models.Order
		if err := first(tx, id, &existing); err != nil {
			return err
		}
		o.ID = existing.ID
		o.CreatedAt = existing.CreatedAt
		if err := tx.Save(o).Error; err != nil {
			return fmt.Errorf("failed to update order %s: %w", id, err)
		}
		return nil
	})
}

// Delete removes an order or returns ErrNotFound
func (s *OrderStore) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db, id, &models.Order{})
}
