package account

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

// futuresHoldSymbol: futures orders settle entirely in the quote currency
// regardless of direction.
func futuresHoldSymbol(o order.Order) string {
	return o.Pair().QuoteSymbol
}

// FuturesAccountBalances extends the spot ledger with margin bookkeeping.
// Margin mirrors the hold structure but is sized on the opening portion of
// each futures order only: the closing portion reduces an existing position
// and needs no new margin.
type FuturesAccountBalances struct {
	AccountBalances
	marginsBySymbol domain.Amounts
	marginsByOrder  map[string]domain.Amounts
}

func NewFuturesAccountBalances(initialBalances domain.Amounts) *FuturesAccountBalances {
	return &FuturesAccountBalances{
		AccountBalances: AccountBalances{
			balances:      initialBalances.Copy(),
			holdsBySymbol: domain.Amounts{},
			holdsByOrder:  map[string]domain.Amounts{},
			holdSymbol:    futuresHoldSymbol,
		},
		marginsBySymbol: domain.Amounts{},
		marginsByOrder:  map[string]domain.Amounts{},
	}
}

// GetBalanceOnMargin returns the total margin reserved for the symbol.
func (f *FuturesAccountBalances) GetBalanceOnMargin(symbol string) decimal.Decimal {
	return f.marginsBySymbol.Get(symbol)
}

// GetBalanceOnMarginForOrder returns the margin reserved for one order.
func (f *FuturesAccountBalances) GetBalanceOnMarginForOrder(orderID, symbol string) decimal.Decimal {
	return f.marginsByOrder[orderID].Get(symbol)
}

// OrderMarginAccepted reserves margin for a newly accepted futures order,
// sized by the caller as openingQuantity x marginRequirement.
func (f *FuturesAccountBalances) OrderMarginAccepted(o order.FuturesOrder, requiredMargin domain.Amounts) {
	domain.Require(o.IsOpen(), "account.OrderMarginAccepted", "order %s is not open", o.ID())
	_, accepted := f.marginsByOrder[o.ID()]
	domain.Require(!accepted, "account.OrderMarginAccepted", "order %s was already accepted", o.ID())

	symbol := o.Contract().QuoteSymbol
	marginAmount := requiredMargin.Get(symbol)
	domain.Require(!marginAmount.IsNegative(), "account.OrderMarginAccepted", "invalid margin amount %s", marginAmount)

	margins := domain.Amounts{symbol: marginAmount}
	f.marginsBySymbol = domain.AddAmounts(f.marginsBySymbol, margins)
	f.marginsByOrder[o.ID()] = margins
}

// OrderUpdated applies the fill to balances and holds like the spot ledger,
// then reconciles margin. While the order stays open the full opening
// quantity remains margined; once it turns terminal only the margin backing
// the filled opening quantity survives (it now backs an open position, and
// is released later by OrderClosed).
func (f *FuturesAccountBalances) OrderUpdated(o order.Order, balanceUpdates domain.Amounts) {
	fo, ok := o.(order.FuturesOrder)
	domain.Require(ok, "account.OrderUpdated", "order %s is not a futures order", o.ID())

	f.AccountBalances.OrderUpdated(o, balanceUpdates)

	if fo.OpeningQuantity().IsZero() {
		// Nothing to margin: the order only closes an existing position.
		return
	}
	margins, marginAccepted := f.marginsByOrder[fo.ID()]
	if fo.IsOpen() {
		domain.Require(marginAccepted, "account.OrderUpdated", "order %s margin was not accepted", fo.ID())
	}
	if !marginAccepted {
		// Terminal without a margin entry: nothing reserved, nothing to
		// reconcile.
		return
	}
	symbol := fo.Contract().QuoteSymbol
	reserved := margins.Get(symbol)

	quantity := fo.OpeningQuantity()
	if !fo.IsOpen() {
		quantity = decimal.Min(fo.OpeningQuantity(), fo.QuantityFilled())
	}
	target := quantity.Mul(fo.Contract().MarginRequirement)

	marginUpdates := domain.Amounts{symbol: target.Sub(reserved)}
	f.marginsByOrder[fo.ID()] = domain.AddAmounts(f.marginsByOrder[fo.ID()], marginUpdates)
	f.marginsBySymbol = domain.AddAmounts(f.marginsBySymbol, marginUpdates)
}

// CalculatePnL computes the profit or loss realized by closing part of the
// position opened by openingOrder at the given exit price. The quantity is
// the closing order's filled closing portion, capped by what the opening
// order actually filled.
func (f *FuturesAccountBalances) CalculatePnL(openingOrder, closingOrder order.FuturesOrder, price decimal.Decimal) decimal.Decimal {
	filled := openingOrder.QuantityFilled()
	domain.Require(filled.IsPositive(), "account.CalculatePnL", "opening order %s has no fills", openingOrder.ID())

	entryPrice := openingOrder.QuoteQuantityFilled().Div(filled)
	quantity := decimal.Min(closingOrder.ClosingQuantityFilled(), filled)
	pointValue := decimal.NewFromInt(int64(openingOrder.Contract().Multiplier))

	return price.Sub(entryPrice).
		Mul(quantity).
		Mul(pointValue).
		Mul(openingOrder.Operation().BaseSign())
}

// OrderClosed releases the margin still reserved for a terminal order once
// the position it opened has been unwound.
func (f *FuturesAccountBalances) OrderClosed(o order.FuturesOrder) {
	domain.Require(!o.IsOpen(), "account.OrderClosed", "order %s is still open", o.ID())
	margins, ok := f.marginsByOrder[o.ID()]
	if !ok {
		return
	}
	delete(f.marginsByOrder, o.ID())
	f.marginsBySymbol = domain.AddAmounts(f.marginsBySymbol, margins.Negated())
}

// OrderRejected rolls back the hold and margin reservations of an accepted
// order that was rejected before any fill took place.
func (f *FuturesAccountBalances) OrderRejected(o order.Order) {
	domain.Require(o.AmountFilled().IsZero(), "account.OrderRejected", "order %s has fills", o.ID())

	if holds, ok := f.holdsByOrder[o.ID()]; ok {
		delete(f.holdsByOrder, o.ID())
		f.holdsBySymbol = domain.AddAmounts(f.holdsBySymbol, holds.Negated())
	}
	if margins, ok := f.marginsByOrder[o.ID()]; ok {
		delete(f.marginsByOrder, o.ID())
		f.marginsBySymbol = domain.AddAmounts(f.marginsBySymbol, margins.Negated())
	}
}
