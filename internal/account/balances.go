// Package account implements the ledger that backs a simulated trading
// account: settled balances per symbol, plus the holds (and, for futures,
// margins) reserved against open orders.
package account

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

// holdSymbolFunc selects the symbol a hold is taken in for an order.
type holdSymbolFunc func(o order.Order) string

// spotHoldSymbol: buys spend quote, sells spend base.
func spotHoldSymbol(o order.Order) string {
	if o.Operation() == domain.Buy {
		return o.Pair().QuoteSymbol
	}
	return o.Pair().BaseSymbol
}

// AccountBalances tracks settled balances and the funds reserved against
// open orders. The caller validates hold feasibility before acceptance;
// this ledger only enforces its own bookkeeping invariants, and it does so
// fatally since a violation means the books are already corrupt.
//
// Invariant: for every symbol, the total on hold equals the sum of the
// per-order holds, and the available balance is settled minus held.
type AccountBalances struct {
	balances      domain.Amounts
	holdsBySymbol domain.Amounts
	holdsByOrder  map[string]domain.Amounts
	holdSymbol    holdSymbolFunc
}

// NewAccountBalances builds a spot account ledger with the given initial
// settled balances.
func NewAccountBalances(initialBalances domain.Amounts) *AccountBalances {
	return &AccountBalances{
		balances:      initialBalances.Copy(),
		holdsBySymbol: domain.Amounts{},
		holdsByOrder:  map[string]domain.Amounts{},
		holdSymbol:    spotHoldSymbol,
	}
}

// GetSymbols returns every symbol with a balance or hold entry.
func (a *AccountBalances) GetSymbols() []string {
	seen := make(map[string]struct{}, len(a.balances))
	symbols := make([]string, 0, len(a.balances))
	for symbol := range a.balances {
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	for symbol := range a.holdsBySymbol {
		if _, ok := seen[symbol]; !ok {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

// GetAvailableBalance returns the settled balance minus what is on hold.
func (a *AccountBalances) GetAvailableBalance(symbol string) decimal.Decimal {
	return a.balances.Get(symbol).Sub(a.GetBalanceOnHold(symbol))
}

// GetBalanceOnHold returns the total reserved for the symbol across orders.
func (a *AccountBalances) GetBalanceOnHold(symbol string) decimal.Decimal {
	return a.holdsBySymbol.Get(symbol)
}

// GetBalanceOnHoldForOrder returns the amount reserved for one order.
func (a *AccountBalances) GetBalanceOnHoldForOrder(orderID, symbol string) decimal.Decimal {
	return a.holdsByOrder[orderID].Get(symbol)
}

// OrderAccepted reserves the required balance for a newly accepted order.
// The hold is taken in the order's hold symbol and released incrementally
// by OrderUpdated as fills consume it.
func (a *AccountBalances) OrderAccepted(o order.Order, requiredBalance domain.Amounts) {
	domain.Require(o.IsOpen(), "account.OrderAccepted", "order %s is not open", o.ID())
	_, accepted := a.holdsByOrder[o.ID()]
	domain.Require(!accepted, "account.OrderAccepted", "order %s was already accepted", o.ID())

	symbol := a.holdSymbol(o)
	holdAmount := requiredBalance.Get(symbol)
	domain.Require(!holdAmount.IsNegative(), "account.OrderAccepted", "invalid hold amount %s", holdAmount)

	holds := domain.Amounts{symbol: holdAmount}
	a.holdsBySymbol = domain.AddAmounts(a.holdsBySymbol, holds)
	a.holdsByOrder[o.ID()] = holds
}

// OrderUpdated applies a fill's balance updates to the settled balances and
// shrinks the order's hold. While the order stays open, the hold is reduced
// by what was spent, clamped so it never goes negative even if the updates
// overshoot. Once the order is terminal, whatever hold remains is released
// and the per-order entry is removed.
func (a *AccountBalances) OrderUpdated(o order.Order, balanceUpdates domain.Amounts) {
	orderHolds, accepted := a.holdsByOrder[o.ID()]
	domain.Require(accepted, "account.OrderUpdated", "order %s was not accepted or was already removed", o.ID())

	a.balances = domain.AddAmounts(a.balances, balanceUpdates)

	symbol := a.holdSymbol(o)
	var holdUpdates domain.Amounts
	if o.IsOpen() {
		amountOnHold := orderHolds.Get(symbol)
		amountSpent := balanceUpdates.Get(symbol)
		domain.Require(amountSpent.Sign() <= 0, "account.OrderUpdated", "invalid amount spent %s", amountSpent)
		// Release whatever was spent, but no more than what was on hold.
		holdUpdates = domain.Amounts{symbol: decimal.Max(amountOnHold.Neg(), amountSpent)}
		a.holdsByOrder[o.ID()] = domain.AddAmounts(orderHolds, holdUpdates)
	} else {
		holdUpdates = orderHolds.Negated()
		delete(a.holdsByOrder, o.ID())
	}
	a.holdsBySymbol = domain.AddAmounts(a.holdsBySymbol, holdUpdates)
}
