package exchange

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

// FeeStrategy computes the fees charged for one fill, given the balance
// updates the fill produces. Fees are returned as negative amounts in the
// symbols they are charged in.
type FeeStrategy interface {
	CalculateFees(o order.Order, balanceUpdates domain.Amounts) domain.Amounts
}

// NoFees charges nothing.
type NoFees struct{}

func (NoFees) CalculateFees(order.Order, domain.Amounts) domain.Amounts {
	return domain.Amounts{}
}

// PercentageFee charges a percentage of the fill's quote amount, with an
// optional minimum per fill, in the quote symbol.
type PercentageFee struct {
	percentage decimal.Decimal
	minimum    decimal.Decimal
}

func NewPercentageFee(percentage, minimum decimal.Decimal) *PercentageFee {
	hundred := decimal.NewFromInt(100)
	domain.Require(
		!percentage.IsNegative() && percentage.LessThanOrEqual(hundred),
		"exchange.NewPercentageFee", "invalid percentage %s", percentage,
	)
	domain.Require(!minimum.IsNegative(), "exchange.NewPercentageFee", "invalid minimum %s", minimum)
	return &PercentageFee{percentage: percentage.Div(hundred), minimum: minimum}
}

func (p *PercentageFee) CalculateFees(o order.Order, balanceUpdates domain.Amounts) domain.Amounts {
	quoteSymbol := o.Pair().QuoteSymbol
	charged := balanceUpdates.Get(quoteSymbol).Abs()
	if charged.IsZero() {
		return domain.Amounts{}
	}
	fee := decimal.Max(charged.Mul(p.percentage), p.minimum)
	if fee.IsZero() {
		return domain.Amounts{}
	}
	return domain.Amounts{quoteSymbol: fee.Neg()}
}
