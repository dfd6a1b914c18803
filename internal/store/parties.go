package store

import (
	"context"
	"fmt"
	"time"

	"supplychain/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// CustomerStore is the customer resource
type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	list := []models.Customer{}
	if err := s.db.Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return list, nil
}

func (s *CustomerStore) Get(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	if err := first(s.db, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerStore) Create(ctx context.Context, c *models.Customer) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (s *CustomerStore) Update(ctx context.Context, id string, c *models.Customer) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		var existing models.Customer
		if err := first(tx, id, &existing); err != nil {
			return err
		}
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		return tx.Save(c).Error
	})
}

func (s *CustomerStore) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db, id, &models.Customer{})
}

// SupplierStore is the supplier resource
type SupplierStore struct {
	db *gorm.DB
}

func NewSupplierStore(db *gorm.DB) *SupplierStore {
	return &SupplierStore{db: db}
}

func (s *SupplierStore) List(ctx context.Context) ([]models.Supplier, error) {
	list := []models.Supplier{}
	if err := s.db.Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return list, nil
}

func (s *SupplierStore) Get(ctx context.Context, id string) (*models.Supplier, error) {
	var sup models.Supplier
	if err := first(s.db, id, &sup); err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *SupplierStore) Create(ctx context.Context, sup *models.Supplier) error {
	sup.ID = uuid.New().String()
	sup.CreatedAt = time.Time{}
	sup.UpdatedAt = time.Time{}
	if err := s.db.Create(sup).Error; err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

func (s *SupplierStore) Update(ctx context.Context, id string, sup *models.Supplier) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		var existing models.Supplier
		if err := first(tx, id, &existing); err != nil {
			return err
		}
		sup.ID = existing.ID
		sup.CreatedAt = existing.CreatedAt
		return tx.Save(sup).Error
	})
}

func (s *SupplierStore) Delete(ctx context.Context, id string) error {
	return deleteByID(s.db, id, &models.Supplier{})
}
