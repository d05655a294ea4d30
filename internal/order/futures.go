package order

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
)

// FuturesOrder extends Order for contract trading. The order's quantity is
// partitioned at creation time into the portion that opens a position and
// the portion that closes an existing one; the ledger sizes margin on the
// opening portion only.
type FuturesOrder interface {
	Order

	Contract() domain.Contract
	Quantity() decimal.Decimal
	QuantityFilled() decimal.Decimal
	QuantityPending() decimal.Decimal
	QuoteQuantityFilled() decimal.Decimal
	OpeningQuantity() decimal.Decimal
	OpeningQuantityFilled() decimal.Decimal
	OpeningQuantityPending() decimal.Decimal
	ClosingQuantity() decimal.Decimal
	ClosingQuantityFilled() decimal.Decimal
	ClosingQuantityPending() decimal.Decimal
}

type futuresOrder struct {
	baseOrder
	contract        domain.Contract
	openingQuantity decimal.Decimal
	closingQuantity decimal.Decimal
}

func newFuturesOrder(id string, operation domain.Operation, contract domain.Contract, quantity, openingQuantity, closingQuantity decimal.Decimal) futuresOrder {
	domain.Require(
		!openingQuantity.IsNegative() && !closingQuantity.IsNegative(),
		"order.newFuturesOrder", "invalid opening/closing quantities %s/%s", openingQuantity, closingQuantity,
	)
	split := openingQuantity.Add(closingQuantity)
	domain.Require(
		split.IsZero() || split.Equal(quantity),
		"order.newFuturesOrder", "opening %s + closing %s != quantity %s", openingQuantity, closingQuantity, quantity,
	)
	return futuresOrder{
		baseOrder:       newBaseOrder(id, operation, contract.Pair, quantity),
		contract:        contract,
		openingQuantity: openingQuantity,
		closingQuantity: closingQuantity,
	}
}

func (o *futuresOrder) Contract() domain.Contract { return o.contract }

// Futures naming: quantity is the amount in contracts.
func (o *futuresOrder) Quantity() decimal.Decimal            { return o.amount }
func (o *futuresOrder) QuantityFilled() decimal.Decimal      { return o.AmountFilled() }
func (o *futuresOrder) QuantityPending() decimal.Decimal     { return o.AmountPending() }
func (o *futuresOrder) QuoteQuantityFilled() decimal.Decimal { return o.QuoteAmountFilled() }

func (o *futuresOrder) OpeningQuantity() decimal.Decimal { return o.openingQuantity }

func (o *futuresOrder) OpeningQuantityFilled() decimal.Decimal {
	return decimal.Min(o.QuantityFilled(), o.openingQuantity)
}

func (o *futuresOrder) OpeningQuantityPending() decimal.Decimal {
	return o.openingQuantity.Sub(o.OpeningQuantityFilled())
}

func (o *futuresOrder) ClosingQuantity() decimal.Decimal { return o.closingQuantity }

func (o *futuresOrder) ClosingQuantityFilled() decimal.Decimal {
	return decimal.Min(o.QuantityFilled(), o.closingQuantity)
}

func (o *futuresOrder) ClosingQuantityPending() decimal.Decimal {
	return o.closingQuantity.Sub(o.ClosingQuantityFilled())
}

// MarketFuturesOrder is the futures variant of MarketOrder.
type MarketFuturesOrder struct {
	futuresOrder
}

func NewMarketFuturesOrder(id string, operation domain.Operation, contract domain.Contract, quantity, openingQuantity, closingQuantity decimal.Decimal) *MarketFuturesOrder {
	return &MarketFuturesOrder{
		futuresOrder: newFuturesOrder(id, operation, contract, quantity, openingQuantity, closingQuantity),
	}
}

// NotFilled cancels the order: market orders are fill or kill.
func (o *MarketFuturesOrder) NotFilled() {
	o.Cancel()
}

func (o *MarketFuturesOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return marketFill(o.pair, o.operation, o.QuantityPending(), bar, ls)
}

// LimitFuturesOrder is the futures variant of LimitOrder.
type LimitFuturesOrder struct {
	futuresOrder
	limitPrice decimal.Decimal
}

func NewLimitFuturesOrder(id string, operation domain.Operation, contract domain.Contract, quantity, limitPrice, openingQuantity, closingQuantity decimal.Decimal) *LimitFuturesOrder {
	domain.Require(limitPrice.IsPositive(), "order.NewLimitFuturesOrder", "invalid limit price %s", limitPrice)
	return &LimitFuturesOrder{
		futuresOrder: newFuturesOrder(id, operation, contract, quantity, openingQuantity, closingQuantity),
		limitPrice:   limitPrice,
	}
}

func (o *LimitFuturesOrder) LimitPrice() decimal.Decimal { return o.limitPrice }

func (o *LimitFuturesOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return limitFill(o.pair, o.operation, o.QuantityPending(), o.limitPrice, bar, ls)
}

// StopFuturesOrder is the futures variant of StopOrder.
type StopFuturesOrder struct {
	futuresOrder
	stopPrice decimal.Decimal
}

func NewStopFuturesOrder(id string, operation domain.Operation, contract domain.Contract, quantity, stopPrice, openingQuantity, closingQuantity decimal.Decimal) *StopFuturesOrder {
	domain.Require(stopPrice.IsPositive(), "order.NewStopFuturesOrder", "invalid stop price %s", stopPrice)
	return &StopFuturesOrder{
		futuresOrder: newFuturesOrder(id, operation, contract, quantity, openingQuantity, closingQuantity),
		stopPrice:    stopPrice,
	}
}

func (o *StopFuturesOrder) StopPrice() decimal.Decimal { return o.stopPrice }

// NotFilled cancels the order: stop orders are fill or kill.
func (o *StopFuturesOrder) NotFilled() {
	o.Cancel()
}

func (o *StopFuturesOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	return stopFill(o.pair, o.operation, o.QuantityPending(), o.stopPrice, bar, ls)
}

// StopLimitFuturesOrder is the futures variant of StopLimitOrder.
type StopLimitFuturesOrder struct {
	futuresOrder
	stopPrice  decimal.Decimal
	limitPrice decimal.Decimal
	stopHit    bool
}

func NewStopLimitFuturesOrder(id string, operation domain.Operation, contract domain.Contract, quantity, stopPrice, limitPrice, openingQuantity, closingQuantity decimal.Decimal) *StopLimitFuturesOrder {
	domain.Require(stopPrice.IsPositive(), "order.NewStopLimitFuturesOrder", "invalid stop price %s", stopPrice)
	domain.Require(limitPrice.IsPositive(), "order.NewStopLimitFuturesOrder", "invalid limit price %s", limitPrice)
	return &StopLimitFuturesOrder{
		futuresOrder: newFuturesOrder(id, operation, contract, quantity, openingQuantity, closingQuantity),
		stopPrice:    stopPrice,
		limitPrice:   limitPrice,
	}
}

func (o *StopLimitFuturesOrder) StopPrice() decimal.Decimal  { return o.stopPrice }
func (o *StopLimitFuturesOrder) LimitPrice() decimal.Decimal { return o.limitPrice }
func (o *StopLimitFuturesOrder) StopPriceHit() bool          { return o.stopHit }

func (o *StopLimitFuturesOrder) GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	if !o.stopHit {
		updates, stopHit := stopLimitFillBeforeHit(o.pair, o.operation, o.QuantityPending(), o.stopPrice, o.limitPrice, bar, ls)
		o.stopHit = stopHit
		return updates
	}
	return limitFill(o.pair, o.operation, o.QuantityPending(), o.limitPrice, bar, ls)
}
