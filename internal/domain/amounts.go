package domain

import "github.com/shopspring/decimal"

// Amounts is a sparse mapping of symbol to a signed decimal amount. Missing
// keys are treated as zero everywhere, so an empty map and a map of zeros
// are equivalent.
type Amounts map[string]decimal.Decimal

// Get returns the amount for a symbol, or zero if the symbol is absent.
func (a Amounts) Get(symbol string) decimal.Decimal {
	return a[symbol]
}

// IsEmpty reports whether the mapping has no entries at all.
func (a Amounts) IsEmpty() bool {
	return len(a) == 0
}

// Copy returns a shallow copy of the mapping.
func (a Amounts) Copy() Amounts {
	ret := make(Amounts, len(a))
	for symbol, amount := range a {
		ret[symbol] = amount
	}
	return ret
}

// AddAmounts merges two amount mappings by key union, adding amounts for
// symbols present in both. Neither input is mutated.
func AddAmounts(lhs, rhs Amounts) Amounts {
	ret := make(Amounts, len(lhs)+len(rhs))
	for symbol, amount := range lhs {
		ret[symbol] = amount
	}
	for symbol, amount := range rhs {
		ret[symbol] = ret[symbol].Add(amount)
	}
	return ret
}

// Negated returns a mapping with every amount sign-flipped.
func (a Amounts) Negated() Amounts {
	ret := make(Amounts, len(a))
	for symbol, amount := range a {
		ret[symbol] = amount.Neg()
	}
	return ret
}

// RemoveEmptyAmounts returns a mapping without the zero entries.
func RemoveEmptyAmounts(amounts Amounts) Amounts {
	ret := make(Amounts, len(amounts))
	for symbol, amount := range amounts {
		if !amount.IsZero() {
			ret[symbol] = amount
		}
	}
	return ret
}

// CopySign returns x with the sign of y. A zero y leaves x unchanged.
func CopySign(x, y decimal.Decimal) decimal.Decimal {
	if x.IsPositive() && y.IsNegative() || x.IsNegative() && y.IsPositive() {
		return x.Neg()
	}
	return x
}

// Sign returns 1 or -1 matching the sign of value, treating zero as
// positive like math.Copysign does.
func Sign(value decimal.Decimal) decimal.Decimal {
	return CopySign(one, value)
}

// TradeSideQuantities splits an order's quantity into the portion that opens
// a position and the portion that closes the current one, given the signed
// current position (positive long, negative short).
func TradeSideQuantities(currentPosition decimal.Decimal, operation Operation, quantity decimal.Decimal) (opening, closing decimal.Decimal) {
	// Same direction as the current position, or flat: everything opens.
	if currentPosition.Mul(operation.BaseSign()).Sign() >= 0 {
		return quantity, decimal.Zero
	}
	held := currentPosition.Abs()
	if held.GreaterThanOrEqual(quantity) {
		return decimal.Zero, quantity
	}
	return quantity.Sub(held), held
}
