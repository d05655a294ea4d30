package order

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
)

// The fill rules below are shared between the spot and futures variants of
// each order kind; the variants differ only in the pair/contract they trade
// and in the extra bookkeeping the ledger applies to them.

// fillAmounts builds the signed balance deltas for filling amount at price:
// BUY gains base and spends quote, SELL is the negation.
func fillAmounts(pair domain.Pair, operation domain.Operation, amount, price decimal.Decimal) domain.Amounts {
	baseSign := operation.BaseSign()
	return domain.Amounts{
		pair.BaseSymbol:  amount.Mul(baseSign),
		pair.QuoteSymbol: price.Mul(amount).Mul(baseSign).Neg(),
	}
}

// marketFill fills the entire pending amount at the slipped open price, or
// nothing at all if liquidity can't cover it (fill or kill).
func marketFill(pair domain.Pair, operation domain.Operation, pending decimal.Decimal, bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	if pending.GreaterThan(ls.AvailableLiquidity()) {
		return nil
	}
	var price decimal.Decimal
	if operation == domain.Buy {
		price = SlippedPrice(bar.Open, operation, pending, ls, nil, &bar.High)
	} else {
		price = SlippedPrice(bar.Open, operation, pending, ls, &bar.Low, nil)
	}
	return fillAmounts(pair, operation, pending, price)
}

// limitFill fills as much of pending as liquidity allows, at the limit
// price or better.
func limitFill(pair domain.Pair, operation domain.Operation, pending, limitPrice decimal.Decimal, bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	amount := decimal.Min(pending, ls.AvailableLiquidity())
	if amount.IsZero() {
		return nil
	}

	var price decimal.Decimal
	matched := false
	if operation == domain.Buy {
		switch {
		case bar.Open.LessThan(limitPrice):
			// Limit price was hit at bar open.
			price = SlippedPrice(bar.Open, operation, amount, ls, nil, &limitPrice)
			matched = true
		case bar.Low.LessThanOrEqual(limitPrice):
			// The price went down to limit price or lower.
			price = limitPrice
			matched = true
		}
	} else {
		switch {
		case bar.Open.GreaterThan(limitPrice):
			// Limit price was hit at bar open.
			price = SlippedPrice(bar.Open, operation, amount, ls, &limitPrice, nil)
			matched = true
		case bar.High.GreaterThanOrEqual(limitPrice):
			// The price went up to limit price or higher.
			price = limitPrice
			matched = true
		}
	}

	if !matched {
		return nil
	}
	return fillAmounts(pair, operation, amount, price)
}

// stopTriggerPrice returns the price at which a stop triggers on this bar:
// the open if the stop is already satisfied there, otherwise the stop price
// itself when the intraday range crosses it.
func stopTriggerPrice(operation domain.Operation, stopPrice decimal.Decimal, bar domain.Bar) (decimal.Decimal, bool) {
	if operation == domain.Buy {
		switch {
		case bar.Open.GreaterThanOrEqual(stopPrice):
			return bar.Open, true
		case bar.High.GreaterThanOrEqual(stopPrice):
			return stopPrice, true
		}
	} else {
		switch {
		case bar.Open.LessThanOrEqual(stopPrice):
			return bar.Open, true
		case bar.Low.LessThanOrEqual(stopPrice):
			return stopPrice, true
		}
	}
	return decimal.Decimal{}, false
}

// stopFill fills the entire pending amount at the slipped trigger price, or
// nothing at all (fill or kill like marketFill).
func stopFill(pair domain.Pair, operation domain.Operation, pending, stopPrice decimal.Decimal, bar domain.Bar, ls liquidity.Strategy) domain.Amounts {
	if pending.GreaterThan(ls.AvailableLiquidity()) {
		return nil
	}
	trigger, ok := stopTriggerPrice(operation, stopPrice, bar)
	if !ok {
		return nil
	}
	var price decimal.Decimal
	if operation == domain.Buy {
		price = SlippedPrice(trigger, operation, pending, ls, nil, &bar.High)
	} else {
		price = SlippedPrice(trigger, operation, pending, ls, &bar.Low, nil)
	}
	return fillAmounts(pair, operation, pending, price)
}

// stopLimitFillBeforeHit evaluates a stop-limit order whose stop hasn't
// triggered yet. When the stop triggers it immediately re-checks whether
// the limit is reachable within the same bar; stopHit reports the (one way)
// flag transition regardless of whether a fill happened.
func stopLimitFillBeforeHit(pair domain.Pair, operation domain.Operation, pending, stopPrice, limitPrice decimal.Decimal, bar domain.Bar, ls liquidity.Strategy) (updates domain.Amounts, stopHit bool) {
	amount := decimal.Min(pending, ls.AvailableLiquidity())

	var price decimal.Decimal
	matched := false
	limitInRange := bar.Low.LessThanOrEqual(limitPrice) && limitPrice.LessThanOrEqual(bar.High)

	if operation == domain.Buy {
		switch {
		case bar.Open.GreaterThanOrEqual(stopPrice):
			stopHit = true
			if bar.Open.LessThanOrEqual(limitPrice) {
				// Limit was also satisfied at open.
				price, matched = bar.Open, true
			} else if limitInRange {
				// Limit was hit some time later within the bar.
				price, matched = limitPrice, true
			}
		case bar.High.GreaterThanOrEqual(stopPrice):
			stopHit = true
			if limitInRange {
				price, matched = limitPrice, true
			}
		}
		if matched && !price.Equal(limitPrice) {
			price = SlippedPrice(price, operation, amount, ls, nil, &limitPrice)
		}
	} else {
		switch {
		case bar.Open.LessThanOrEqual(stopPrice):
			stopHit = true
			if bar.Open.GreaterThanOrEqual(limitPrice) {
				price, matched = bar.Open, true
			} else if limitInRange {
				price, matched = limitPrice, true
			}
		case bar.Low.LessThanOrEqual(stopPrice):
			stopHit = true
			if limitInRange {
				price, matched = limitPrice, true
			}
		}
		if matched && !price.Equal(limitPrice) {
			price = SlippedPrice(price, operation, amount, ls, &limitPrice, nil)
		}
	}

	if !matched || amount.IsZero() {
		return nil, stopHit
	}
	return fillAmounts(pair, operation, amount, price), stopHit
}
