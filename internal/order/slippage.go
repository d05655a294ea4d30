package order

import (
	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
)

var one = decimal.NewFromInt(1)

// SlippedPrice adjusts price by the liquidity strategy's impact for the
// given fill amount: up for buys, down for sells. Optional caps clamp the
// result so slippage never pushes the price beyond a bar extreme or a limit
// price.
func SlippedPrice(price decimal.Decimal, operation domain.Operation, amount decimal.Decimal, ls liquidity.Strategy, capLow, capHigh *decimal.Decimal) decimal.Decimal {
	impact := ls.CalculatePriceImpact(amount)
	if operation == domain.Buy {
		price = price.Mul(one.Add(impact))
	} else {
		price = price.Mul(one.Sub(impact))
	}
	if capLow != nil {
		price = decimal.Max(price, *capLow)
	}
	if capHigh != nil {
		price = decimal.Min(price, *capHigh)
	}
	return price
}
