package account

import (
	"testing"

	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

var esUsd = domain.Contract{
	Pair:              domain.Pair{BaseSymbol: "ES", QuoteSymbol: "USD"},
	MarginRequirement: decimal.NewFromInt(9500),
	Multiplier:        50,
}

func TestFuturesOrderGetsCompleted(t *testing.T) {
	ledger := NewFuturesAccountBalances(usd("100000"))
	o := order.NewLimitFuturesOrder("1", domain.Buy, esUsd,
		decimal.NewFromInt(3), decimal.NewFromInt(1050), decimal.NewFromInt(3), decimal.Zero)

	ledger.OrderAccepted(o, usd("2100"))
	ledger.OrderMarginAccepted(o, usd("28500"))
	assertDecimal(t, "hold", ledger.GetBalanceOnHold("USD"), "2100")
	assertDecimal(t, "margin", ledger.GetBalanceOnMargin("USD"), "28500")
	assertDecimal(t, "order margin", ledger.GetBalanceOnMarginForOrder("1", "USD"), "28500")

	fills := []struct {
		usd      string
		wantHold string
	}{
		{"-1010", "1090"},
		{"-1010", "80"},
		{"-1005", "0"},
	}
	for _, f := range fills {
		updates := domain.Amounts{"ES": decimal.NewFromInt(1), "USD": decimal.RequireFromString(f.usd)}
		o.AddFill(fillTs, updates, nil)
		ledger.OrderUpdated(o, updates)
		assertDecimal(t, "hold", ledger.GetBalanceOnHold("USD"), f.wantHold)
	}

	if o.IsOpen() {
		t.Fatal("order should be completed")
	}
	// The order is done but the position it opened isn't: margin stays.
	assertDecimal(t, "margin after completion", ledger.GetBalanceOnMargin("USD"), "28500")

	ledger.OrderClosed(o)
	assertDecimal(t, "margin after close", ledger.GetBalanceOnMargin("USD"), "0")
	assertDecimal(t, "order margin after close", ledger.GetBalanceOnMarginForOrder("1", "USD"), "0")
}

func TestFuturesOrderGetsCanceled(t *testing.T) {
	ledger := NewFuturesAccountBalances(usd("100000"))
	o := order.NewMarketFuturesOrder("1", domain.Buy, esUsd,
		decimal.NewFromInt(2), decimal.NewFromInt(2), decimal.Zero)

	ledger.OrderAccepted(o, usd("8000"))
	ledger.OrderMarginAccepted(o, usd("19000"))
	assertDecimal(t, "available", ledger.GetAvailableBalance("USD"), "92000")
	assertDecimal(t, "margin", ledger.GetBalanceOnMargin("USD"), "19000")

	o.Cancel()
	ledger.OrderUpdated(o, nil)
	// Nothing filled, so nothing was opened: margin drops with the order.
	assertDecimal(t, "available after cancel", ledger.GetAvailableBalance("USD"), "100000")
	assertDecimal(t, "margin after cancel", ledger.GetBalanceOnMargin("USD"), "0")
}

func TestFuturesMarginCoversOpeningPortionOnly(t *testing.T) {
	contract := domain.Contract{
		Pair:              esUsd.Pair,
		MarginRequirement: decimal.NewFromInt(10000),
		Multiplier:        50,
	}
	ledger := NewFuturesAccountBalances(usd("100000"))
	// 4 contracts, of which 1 closes an existing position: margin is sized
	// on the 3 opening contracts.
	o := order.NewMarketFuturesOrder("1", domain.Buy, contract,
		decimal.NewFromInt(4), decimal.NewFromInt(3), decimal.NewFromInt(1))

	ledger.OrderAccepted(o, usd("16000"))
	ledger.OrderMarginAccepted(o, usd("30000"))
	assertDecimal(t, "margin at accept", ledger.GetBalanceOnMargin("USD"), "30000")

	updates := domain.Amounts{"ES": decimal.NewFromInt(4), "USD": decimal.NewFromInt(-16000)}
	o.AddFill(fillTs, updates, nil)
	ledger.OrderUpdated(o, updates)
	assertDecimal(t, "margin after fill", ledger.GetBalanceOnMargin("USD"), "30000")

	ledger.OrderClosed(o)
	assertDecimal(t, "margin after close", ledger.GetBalanceOnMargin("USD"), "0")
}

func TestFuturesPartialFillThenCancel(t *testing.T) {
	ledger := NewFuturesAccountBalances(usd("100000"))
	o := order.NewLimitFuturesOrder("1", domain.Buy, esUsd,
		decimal.NewFromInt(2), decimal.NewFromInt(4000), decimal.NewFromInt(2), decimal.Zero)

	ledger.OrderAccepted(o, usd("8000"))
	ledger.OrderMarginAccepted(o, usd("19000"))

	updates := domain.Amounts{"ES": decimal.NewFromInt(1), "USD": decimal.NewFromInt(-4000)}
	o.AddFill(fillTs, updates, nil)
	ledger.OrderUpdated(o, updates)
	// Both opening contracts stay margined while the order can still fill.
	assertDecimal(t, "margin while open", ledger.GetBalanceOnMargin("USD"), "19000")

	o.Cancel()
	ledger.OrderUpdated(o, nil)
	// Only the filled contract still backs a position.
	assertDecimal(t, "margin after cancel", ledger.GetBalanceOnMargin("USD"), "9500")
	assertDecimal(t, "hold after cancel", ledger.GetBalanceOnHold("USD"), "0")

	ledger.OrderClosed(o)
	assertDecimal(t, "margin after close", ledger.GetBalanceOnMargin("USD"), "0")
}

func TestCalculatePnL(t *testing.T) {
	ledger := NewFuturesAccountBalances(usd("100000"))

	newFilledOrder := func(id string, op domain.Operation, qty, quote int64, opening, closing int64) order.FuturesOrder {
		o := order.NewMarketFuturesOrder(id, op, esUsd,
			decimal.NewFromInt(qty), decimal.NewFromInt(opening), decimal.NewFromInt(closing))
		ledger.OrderAccepted(o, usd("0"))
		updates := domain.Amounts{
			"ES":  decimal.NewFromInt(qty).Mul(op.BaseSign()),
			"USD": decimal.NewFromInt(quote).Mul(op.BaseSign()).Neg(),
		}
		o.AddFill(fillTs, updates, nil)
		ledger.OrderUpdated(o, updates)
		return o
	}

	t.Run("Long Position Gains When Price Rises", func(t *testing.T) {
		opening := newFilledOrder("1", domain.Buy, 1, 4000, 1, 0)
		closing := newFilledOrder("2", domain.Sell, 1, 4010, 0, 1)
		pnl := ledger.CalculatePnL(opening, closing, decimal.NewFromInt(4010))
		assertDecimal(t, "pnl", pnl, "500")
	})

	t.Run("Short Position Loses When Price Rises", func(t *testing.T) {
		opening := newFilledOrder("3", domain.Sell, 1, 4000, 1, 0)
		closing := newFilledOrder("4", domain.Buy, 1, 4010, 0, 1)
		pnl := ledger.CalculatePnL(opening, closing, decimal.NewFromInt(4010))
		assertDecimal(t, "pnl", pnl, "-500")
	})

	t.Run("Quantity Capped By Opening Fill", func(t *testing.T) {
		opening := newFilledOrder("5", domain.Buy, 2, 8000, 2, 0)
		closing := newFilledOrder("6", domain.Sell, 3, 12060, 0, 3)
		// Only the 2 contracts actually opened count.
		pnl := ledger.CalculatePnL(opening, closing, decimal.NewFromInt(4020))
		assertDecimal(t, "pnl", pnl, "2000")
	})

	t.Run("Unfilled Opening Order Panics", func(t *testing.T) {
		opening := order.NewMarketFuturesOrder("7", domain.Buy, esUsd,
			decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		closing := newFilledOrder("8", domain.Sell, 1, 4010, 0, 1)
		assertPanics(t, func() {
			ledger.CalculatePnL(opening, closing, decimal.NewFromInt(4010))
		})
	})
}

func TestOrderRejected(t *testing.T) {
	t.Run("Rolls Back Hold And Margin", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewMarketFuturesOrder("1", domain.Buy, esUsd,
			decimal.NewFromInt(2), decimal.NewFromInt(2), decimal.Zero)
		ledger.OrderAccepted(o, usd("8000"))
		ledger.OrderMarginAccepted(o, usd("19000"))

		ledger.OrderRejected(o)
		assertDecimal(t, "available", ledger.GetAvailableBalance("USD"), "100000")
		assertDecimal(t, "hold", ledger.GetBalanceOnHold("USD"), "0")
		assertDecimal(t, "margin", ledger.GetBalanceOnMargin("USD"), "0")
	})

	t.Run("Filled Order Panics", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewMarketFuturesOrder("1", domain.Buy, esUsd,
			decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		ledger.OrderAccepted(o, usd("4000"))
		updates := domain.Amounts{"ES": decimal.NewFromInt(1), "USD": decimal.NewFromInt(-4000)}
		o.AddFill(fillTs, updates, nil)
		assertPanics(t, func() { ledger.OrderRejected(o) })
	})
}

func TestFuturesOrderUpdatedPreconditions(t *testing.T) {
	t.Run("Spot Order Panics", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewMarketOrder("1", domain.Buy, btcUsd, decimal.NewFromInt(1))
		ledger.OrderAccepted(o, usd("4000"))
		assertPanics(t, func() { ledger.OrderUpdated(o, nil) })
	})

	t.Run("Open Order Without Margin Accept Panics", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewLimitFuturesOrder("1", domain.Buy, esUsd,
			decimal.NewFromInt(2), decimal.NewFromInt(4000), decimal.NewFromInt(2), decimal.Zero)
		ledger.OrderAccepted(o, usd("8000"))

		// Partial fill keeps the order open; reconciling margin that was
		// never reserved must not book it out of nothing.
		updates := domain.Amounts{"ES": decimal.NewFromInt(1), "USD": decimal.NewFromInt(-4000)}
		o.AddFill(fillTs, updates, nil)
		assertPanics(t, func() { ledger.OrderUpdated(o, updates) })
		assertDecimal(t, "margin", ledger.GetBalanceOnMargin("USD"), "0")
	})

	t.Run("Terminal Order Without Margin Accept Is Tolerated", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewMarketFuturesOrder("1", domain.Buy, esUsd,
			decimal.NewFromInt(2), decimal.NewFromInt(2), decimal.Zero)
		ledger.OrderAccepted(o, usd("8000"))

		o.Cancel()
		ledger.OrderUpdated(o, nil)
		assertDecimal(t, "hold", ledger.GetBalanceOnHold("USD"), "0")
		assertDecimal(t, "margin", ledger.GetBalanceOnMargin("USD"), "0")
	})

	t.Run("Close Open Order Panics", func(t *testing.T) {
		ledger := NewFuturesAccountBalances(usd("100000"))
		o := order.NewMarketFuturesOrder("1", domain.Buy, esUsd,
			decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		ledger.OrderAccepted(o, usd("4000"))
		ledger.OrderMarginAccepted(o, usd("9500"))
		assertPanics(t, func() { ledger.OrderClosed(o) })
	})
}
