// Package store persists items, orders, customers and suppliers with gorm.
// Every record gets a server-assigned UUID and updates replace the whole record.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
)

var (
	// ErrNotFound is returned when no record has the requested id
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when an adjustment would take a quantity below zero
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store groups the repositories that share one database handle
type Store struct {
	db        *gorm.DB
	Items     *ItemStore
	Orders    *OrderStore
	Customers *CustomerStore
	Suppliers *SupplierStore
	Reports   *ReportStore
}

// New builds every repository on top of db. driver is the database/sql
// driver name, needed for sqlx bind variables.
func New(db *gorm.DB, driver string) *Store {
	return &Store{
		db:        db,
		Items:     NewItemStore(db),
		Orders:    NewOrderStore(db),
		Customers: NewCustomerStore(db),
		Suppliers: NewSupplierStore(db),
		Reports:   NewReportStore(db, driver),
	}
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.DB().PingContext(ctx)
}

// withTx runs fn inside a transaction, rolling back when fn fails
func withTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// first loads the record with the given id into out
func first(db *gorm.DB, id string, out interface{}) error {
	err := db.Where("id = ?", id).First(out).Error
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	return err
}

// deleteByID removes the record with the given id from model's table
func deleteByID(db *gorm.DB, id string, model interface{}) error {
	res := db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
