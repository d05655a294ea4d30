package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewBar(t *testing.T) {
	pair := Pair{BaseSymbol: "BTC", QuoteSymbol: "USD"}
	when := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	d := decimal.NewFromInt

	t.Run("Valid", func(t *testing.T) {
		bar, err := NewBar(when, pair, d(100), d(110), d(95), d(105), d(1000))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bar.Pair != pair || !bar.Open.Equal(d(100)) {
			t.Error("bar fields not preserved")
		}
	})

	t.Run("Low Above High", func(t *testing.T) {
		_, err := NewBar(when, pair, d(100), d(90), d(95), d(92), d(1000))
		if !errors.Is(err, ErrInvalidBar) {
			t.Errorf("expected ErrInvalidBar, got %v", err)
		}
	})

	t.Run("Open Outside Range", func(t *testing.T) {
		_, err := NewBar(when, pair, d(120), d(110), d(95), d(105), d(1000))
		if !errors.Is(err, ErrInvalidBar) {
			t.Errorf("expected ErrInvalidBar, got %v", err)
		}
	})

	t.Run("Close Outside Range", func(t *testing.T) {
		_, err := NewBar(when, pair, d(100), d(110), d(95), d(90), d(1000))
		if !errors.Is(err, ErrInvalidBar) {
			t.Errorf("expected ErrInvalidBar, got %v", err)
		}
	})

	t.Run("Negative Volume", func(t *testing.T) {
		_, err := NewBar(when, pair, d(100), d(110), d(95), d(105), d(-1))
		if !errors.Is(err, ErrInvalidBar) {
			t.Errorf("expected ErrInvalidBar, got %v", err)
		}
	})
}
