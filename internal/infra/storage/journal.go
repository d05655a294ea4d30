// Package storage persists a journal of orders and fills for reporting
// after a backtest run. The matching core itself stays in-memory; the
// journal only observes it through the processor's recorder hook.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backtest_go/internal/order"
)

// OrderRecord is the persisted snapshot of an order.
type OrderRecord struct {
	ID        string `gorm:"primaryKey"`
	Pair      string `gorm:"index"`
	Operation string
	Amount    string // decimal as string, sqlite has no decimal type
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FillRecord is one executed fill of an order.
type FillRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"index"`
	FilledAt    time.Time
	BaseAmount  string
	QuoteAmount string
	Fee         string
	Price       string
}

// Journal is a SQLite-backed order/fill journal.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal database at path.
func NewJournal(path string) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&OrderRecord{}, &FillRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

// SaveOrder creates or refreshes the order's snapshot.
func (j *Journal) SaveOrder(o order.Order) error {
	return j.db.Save(&OrderRecord{
		ID:        o.ID(),
		Pair:      o.Pair().String(),
		Operation: string(o.Operation()),
		Amount:    o.Amount().String(),
		State:     string(o.State()),
	}).Error
}

// RecordFill appends a fill and refreshes the order snapshot. Implements
// the processor's FillRecorder hook.
func (j *Journal) RecordFill(o order.Order, fill order.Fill) error {
	pair := o.Pair()
	record := &FillRecord{
		OrderID:     o.ID(),
		FilledAt:    fill.When,
		BaseAmount:  fill.BalanceUpdates.Get(pair.BaseSymbol).String(),
		QuoteAmount: fill.BalanceUpdates.Get(pair.QuoteSymbol).String(),
		Fee:         fill.Fees.Get(pair.QuoteSymbol).String(),
		Price:       fill.Price.String(),
	}
	if err := j.db.Create(record).Error; err != nil {
		return err
	}
	return j.SaveOrder(o)
}

// GetOrder retrieves an order snapshot, or nil when not journaled.
func (j *Journal) GetOrder(id string) (*OrderRecord, error) {
	var record OrderRecord
	err := j.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

// FillsForOrder returns the fills for an order in execution order.
func (j *Journal) FillsForOrder(orderID string) ([]FillRecord, error) {
	var fills []FillRecord
	err := j.db.Order("id ASC").Find(&fills, "order_id = ?", orderID).Error
	return fills, err
}

// Orders returns all journaled order snapshots.
func (j *Journal) Orders() ([]OrderRecord, error) {
	var records []OrderRecord
	err := j.db.Find(&records).Error
	return records, err
}
