package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar summarizes the trading activity for a pair over a period of time.
type Bar struct {
	Timestamp time.Time
	Pair      Pair
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// NewBar builds a bar, validating that open and close sit within [low, high].
func NewBar(timestamp time.Time, pair Pair, open, high, low, close, volume decimal.Decimal) (Bar, error) {
	if low.GreaterThan(high) {
		return Bar{}, fmt.Errorf("%w: low %s > high %s", ErrInvalidBar, low, high)
	}
	if open.LessThan(low) || open.GreaterThan(high) {
		return Bar{}, fmt.Errorf("%w: open %s outside [%s, %s]", ErrInvalidBar, open, low, high)
	}
	if close.LessThan(low) || close.GreaterThan(high) {
		return Bar{}, fmt.Errorf("%w: close %s outside [%s, %s]", ErrInvalidBar, close, low, high)
	}
	if volume.IsNegative() {
		return Bar{}, fmt.Errorf("%w: negative volume %s", ErrInvalidBar, volume)
	}
	return Bar{
		Timestamp: timestamp,
		Pair:      pair,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}
