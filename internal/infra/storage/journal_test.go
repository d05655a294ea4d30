package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

var btcUsd = domain.Pair{BaseSymbol: "BTC", QuoteSymbol: "USD"}

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	return journal
}

func TestJournalSaveAndGetOrder(t *testing.T) {
	journal := newTestJournal(t)
	o := order.NewLimitOrder("order-1", domain.Buy, btcUsd, decimal.NewFromInt(2), decimal.NewFromInt(4000))

	if err := journal.SaveOrder(o); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	record, err := journal.GetOrder("order-1")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if record.Pair != "BTC/USD" || record.Operation != "BUY" || record.State != "OPEN" {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.Amount != "2" {
		t.Errorf("unexpected amount: %s", record.Amount)
	}
}

func TestJournalGetOrderMissing(t *testing.T) {
	journal := newTestJournal(t)
	record, err := journal.GetOrder("nope")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for a missing order, got %+v", record)
	}
}

func TestJournalSaveOrderRefreshesState(t *testing.T) {
	journal := newTestJournal(t)
	o := order.NewMarketOrder("order-1", domain.Sell, btcUsd, decimal.NewFromInt(1))

	if err := journal.SaveOrder(o); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}
	o.Cancel()
	if err := journal.SaveOrder(o); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	record, err := journal.GetOrder("order-1")
	if err != nil || record == nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if record.State != "CANCELED" {
		t.Errorf("expected CANCELED, got %s", record.State)
	}

	records, err := journal.Orders()
	if err != nil {
		t.Fatalf("Orders failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("snapshots must not duplicate, got %d records", len(records))
	}
}

func TestJournalRecordFill(t *testing.T) {
	journal := newTestJournal(t)
	o := order.NewLimitOrder("order-1", domain.Buy, btcUsd, decimal.NewFromInt(2), decimal.NewFromInt(4000))
	when := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	fills := []domain.Amounts{
		{"BTC": decimal.NewFromInt(1), "USD": decimal.NewFromInt(-4000)},
		{"BTC": decimal.NewFromInt(1), "USD": decimal.NewFromInt(-3999)},
	}
	for _, updates := range fills {
		fees := domain.Amounts{"USD": decimal.NewFromInt(-10)}
		o.AddFill(when, updates, fees)
		latest := o.Fills()[len(o.Fills())-1]
		if err := journal.RecordFill(o, latest); err != nil {
			t.Fatalf("RecordFill failed: %v", err)
		}
	}

	got, err := journal.FillsForOrder("order-1")
	if err != nil {
		t.Fatalf("FillsForOrder failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(got))
	}
	if got[0].BaseAmount != "1" || got[0].QuoteAmount != "-4000" || got[0].Price != "4000" {
		t.Errorf("unexpected first fill: %+v", got[0])
	}
	if got[1].QuoteAmount != "-3999" || got[1].Fee != "-10" {
		t.Errorf("unexpected second fill: %+v", got[1])
	}

	// The order snapshot was refreshed along the way.
	record, err := journal.GetOrder("order-1")
	if err != nil || record == nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if record.State != "COMPLETED" {
		t.Errorf("expected COMPLETED, got %s", record.State)
	}
}
