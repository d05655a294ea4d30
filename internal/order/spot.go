package order

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
)

// MarketOrder fills its entire remaining amount at the bar's open price
// plus slippage, or not at all.
type MarketOrder struct {
	baseOrder
}

func NewMarketOrder(id string, operation domain.Operation, pair domain.Pair, amount decimal.Decimal) *MarketOrder {
	return &MarketOrder{baseOrder: newBaseOrder(id, operation, pair, amount)}
}

// NotFilled cancels the order: market orders are fill or kill.
func (o *MarketOrder) NotFilled() {
	o.Cancel()
}

func (o *MarketOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return marketFill(o.pair, o.operation, o.AmountPending(), bar, ls)
}

// LimitOrder fills at the limit price or better, partially if liquidity
// runs out, staying open across bars until completed or canceled.
type LimitOrder struct {
	baseOrder
	limitPrice decimal.Decimal
}

func NewLimitOrder(id string, operation domain.Operation, pair domain.Pair, amount, limitPrice decimal.Decimal) *LimitOrder {
	domain.Require(limitPrice.IsPositive(), "order.NewLimitOrder", "invalid limit price %s", limitPrice)
	return &LimitOrder{
		baseOrder:  newBaseOrder(id, operation, pair, amount),
		limitPrice: limitPrice,
	}
}

func (o *LimitOrder) LimitPrice() decimal.Decimal { return o.limitPrice }

func (o *LimitOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return limitFill(o.pair, o.operation, o.AmountPending(), o.limitPrice, bar, ls)
}

// StopOrder triggers when the bar reaches the stop price and then behaves
// like a market order: the whole remaining amount fills or the order is
// killed.
type StopOrder struct {
	baseOrder
	stopPrice decimal.Decimal
}

func NewStopOrder(id string, operation domain.Operation, pair domain.Pair, amount, stopPrice decimal.Decimal) *StopOrder {
	domain.Require(stopPrice.IsPositive(), "order.NewStopOrder", "invalid stop price %s", stopPrice)
	return &StopOrder{
		baseOrder: newBaseOrder(id, operation, pair, amount),
		stopPrice: stopPrice,
	}
}

func (o *StopOrder) StopPrice() decimal.Decimal { return o.stopPrice }

// NotFilled cancels the order: stop orders are fill or kill.
func (o *StopOrder) NotFilled() {
	o.Cancel()
}

func (o *StopOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return stopFill(o.pair, o.operation, o.AmountPending(), o.stopPrice, bar, ls)
}

// StopLimitOrder is a two phase order: once the stop price is reached the
// stop flag latches and the order behaves as a plain limit order from then
// on. Within the triggering bar the limit is re-checked immediately.
type StopLimitOrder struct {
	baseOrder
	stopPrice  decimal.Decimal
	limitPrice decimal.Decimal
	stopHit    bool
}

func NewStopLimitOrder(id string, operation domain.Operation, pair domain.Pair, amount, stopPrice, limitPrice decimal.Decimal) *StopLimitOrder {
	domain.Require(stopPrice.IsPositive(), "order.NewStopLimitOrder", "invalid stop price %s", stopPrice)
	domain.Require(limitPrice.IsPositive(), "order.NewStopLimitOrder", "invalid limit price %s", limitPrice)
	return &StopLimitOrder{
		baseOrder:  newBaseOrder(id, operation, pair, amount),
		stopPrice:  stopPrice,
		limitPrice: limitPrice,
	}
}

func (o *StopLimitOrder) StopPrice() decimal.Decimal  { return o.stopPrice }
func (o *StopLimitOrder) LimitPrice() decimal.Decimal { return o.limitPrice }

// StopPriceHit reports whether the stop phase already triggered.
func (o *StopLimitOrder) StopPriceHit() bool { return o.stopHit }

func (o *StopLimitOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	if !o.stopHit {
		updates, stopHit := stopLimitFillBeforeHit(o.pair, o.operation, o.AmountPending(), o.stopPrice, o.limitPrice, bar, ls)
		o.stopHit = stopHit
		return updates
	}
	return limitFill(o.pair, o.operation, o.AmountPending(), o.limitPrice, bar, ls)
}
