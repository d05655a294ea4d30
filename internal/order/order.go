// Package order implements the per-kind fill state machines used by the
// backtesting exchange. Orders compute the balance deltas a bar would
// produce; the account ledger applies them.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
)

// State is the lifecycle state of an order. Transitions are one-way: OPEN
// to COMPLETED when fully filled, OPEN to CANCELED explicitly or through
// the fill-or-kill policy.
type State string

const (
	StateOpen      State = "OPEN"
	StateCompleted State = "COMPLETED"
	StateCanceled  State = "CANCELED"
)

// Fill records one partial or complete execution of an order.
type Fill struct {
	When           time.Time
	BalanceUpdates domain.Amounts
	Fees           domain.Amounts
	// Price is the realized execution price for this fill, derived from the
	// base and quote deltas. Zero when the deltas don't determine one.
	Price decimal.Decimal
}

// Info is the caller-facing summary of an order.
type Info struct {
	ID                string
	IsOpen            bool
	AmountFilled      decimal.Decimal
	AmountRemaining   decimal.Decimal
	QuoteAmountFilled decimal.Decimal
	Fees              domain.Amounts
}

// FillPrice returns the average fill price, or false if nothing filled yet.
func (i Info) FillPrice() (decimal.Decimal, bool) {
	if i.AmountFilled.IsZero() {
		return decimal.Decimal{}, false
	}
	return i.QuoteAmountFilled.Div(i.AmountFilled), true
}

// Order is the contract between the matching loop and every order kind.
type Order interface {
	ID() string
	Operation() domain.Operation
	Pair() domain.Pair
	Amount() decimal.Decimal
	State() State
	IsOpen() bool

	// BalanceUpdates is the sum of all fills so far, by symbol.
	BalanceUpdates() domain.Amounts
	Fees() domain.Amounts
	AmountFilled() decimal.Decimal
	AmountPending() decimal.Decimal
	QuoteAmountFilled() decimal.Decimal
	Fills() []Fill

	// GetBalanceUpdates computes the balance deltas that filling against the
	// bar would produce, bounded by the liquidity strategy. An empty result
	// means no fill this bar. It has no side effects on balances; stop-limit
	// orders may transition their internal stop flag.
	GetBalanceUpdates(bar domain.Bar, ls liquidity.Strategy) domain.Amounts

	// NotFilled is invoked by the matching loop when GetBalanceUpdates
	// returned empty. Fill-or-kill kinds cancel themselves.
	NotFilled()

	// AddFill applies a fill previously computed by GetBalanceUpdates.
	AddFill(when time.Time, balanceUpdates, fees domain.Amounts)

	Cancel()
	GetOrderInfo() Info
}

// baseOrder carries the fields and behavior shared by every order kind.
type baseOrder struct {
	id             string
	operation      domain.Operation
	pair           domain.Pair
	amount         decimal.Decimal
	state          State
	balanceUpdates domain.Amounts
	fees           domain.Amounts
	fills          []Fill
}

func newBaseOrder(id string, operation domain.Operation, pair domain.Pair, amount decimal.Decimal) baseOrder {
	domain.Require(amount.IsPositive(), "order.New", "invalid amount %s", amount)
	return baseOrder{
		id:             id,
		operation:      operation,
		pair:           pair,
		amount:         amount,
		state:          StateOpen,
		balanceUpdates: domain.Amounts{},
		fees:           domain.Amounts{},
	}
}

func (o *baseOrder) ID() string                     { return o.id }
func (o *baseOrder) Operation() domain.Operation    { return o.operation }
func (o *baseOrder) Pair() domain.Pair              { return o.pair }
func (o *baseOrder) Amount() decimal.Decimal        { return o.amount }
func (o *baseOrder) State() State                   { return o.state }
func (o *baseOrder) IsOpen() bool                   { return o.state == StateOpen }
func (o *baseOrder) BalanceUpdates() domain.Amounts { return o.balanceUpdates }
func (o *baseOrder) Fees() domain.Amounts           { return o.fees }
func (o *baseOrder) Fills() []Fill                  { return o.fills }

func (o *baseOrder) AmountFilled() decimal.Decimal {
	return o.balanceUpdates.Get(o.pair.BaseSymbol).Abs()
}

func (o *baseOrder) AmountPending() decimal.Decimal {
	return o.amount.Sub(o.AmountFilled())
}

func (o *baseOrder) QuoteAmountFilled() decimal.Decimal {
	return o.balanceUpdates.Get(o.pair.QuoteSymbol).Abs()
}

func (o *baseOrder) Cancel() {
	domain.Require(o.state == StateOpen, "order.Cancel", "order %s is %s", o.id, o.state)
	o.state = StateCanceled
}

// NotFilled keeps the order open by default. Fill-or-kill kinds override it.
func (o *baseOrder) NotFilled() {}

func (o *baseOrder) AddFill(when time.Time, balanceUpdates, fees domain.Amounts) {
	domain.Require(o.state == StateOpen, "order.AddFill", "order %s is %s", o.id, o.state)
	o.balanceUpdates = domain.AddAmounts(o.balanceUpdates, balanceUpdates)
	o.fees = domain.AddAmounts(o.fees, fees)
	if o.AmountFilled().GreaterThanOrEqual(o.amount) {
		o.state = StateCompleted
	}
	o.fills = append(o.fills, Fill{
		When:           when,
		BalanceUpdates: balanceUpdates,
		Fees:           fees,
		Price:          realizedPrice(o.pair, balanceUpdates),
	})
}

func (o *baseOrder) GetOrderInfo() Info {
	return Info{
		ID:                o.id,
		IsOpen:            o.state == StateOpen,
		AmountFilled:      o.AmountFilled(),
		AmountRemaining:   o.AmountPending(),
		QuoteAmountFilled: o.QuoteAmountFilled(),
		Fees:              domain.RemoveEmptyAmounts(o.fees).Negated(),
	}
}

// realizedPrice derives the execution price from a single fill's deltas.
func realizedPrice(pair domain.Pair, balanceUpdates domain.Amounts) decimal.Decimal {
	base := balanceUpdates.Get(pair.BaseSymbol)
	if base.IsZero() {
		return decimal.Decimal{}
	}
	return balanceUpdates.Get(pair.QuoteSymbol).Abs().Div(base.Abs())
}
