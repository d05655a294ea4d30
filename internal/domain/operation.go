package domain

import "github.com/shopspring/decimal"

// Operation is the side of an order.
type Operation string

const (
	Buy  Operation = "BUY"
	Sell Operation = "SELL"
)

var (
	one      = decimal.NewFromInt(1)
	minusOne = decimal.NewFromInt(-1)
)

// BaseSign returns the sign that the base symbol amount carries for this
// operation: +1 for BUY, -1 for SELL. The quote amount carries the opposite
// sign.
func (op Operation) BaseSign() decimal.Decimal {
	switch op {
	case Buy:
		return one
	case Sell:
		return minusOne
	default:
		panic(&PreconditionError{Op: "Operation.BaseSign", Detail: "invalid operation " + string(op)})
	}
}
