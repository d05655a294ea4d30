// Package liquidity models how much of a bar's traded volume an order can
// consume and the price impact of consuming it.
package liquidity

import (
	"math"

	"github.com/shopspring/decimal"

	"backtest_go/internal/domain"
)

// Strategy bounds the quantity fillable against the current bar and prices
// the slippage of a fill. Implementations are stateful per pair: OnBar
// resets the budget, TakeLiquidity consumes it as fills are applied.
type Strategy interface {
	// OnBar resets the strategy for a new bar.
	OnBar(bar domain.Bar)

	// AvailableLiquidity returns the quantity still fillable on this bar.
	AvailableLiquidity() decimal.Decimal

	// TakeLiquidity consumes amount and returns the slippage incurred.
	TakeLiquidity(amount decimal.Decimal) decimal.Decimal

	// CalculatePriceImpact returns the slippage that consuming amount would
	// incur, without consuming it.
	CalculatePriceImpact(amount decimal.Decimal) decimal.Decimal

	// CalculateAmount returns the amount that could be consumed without
	// exceeding the given price impact.
	CalculateAmount(priceImpact decimal.Decimal) decimal.Decimal
}

// InfiniteLiquidity fills any amount with no price impact. Useful for low
// frequency strategies where a single order is a negligible share of the
// traded volume.
type InfiniteLiquidity struct{}

var infinity = decimal.NewFromFloat(math.MaxFloat64)

func (InfiniteLiquidity) OnBar(domain.Bar) {}

func (InfiniteLiquidity) AvailableLiquidity() decimal.Decimal {
	return infinity
}

func (InfiniteLiquidity) TakeLiquidity(amount decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func (InfiniteLiquidity) CalculatePriceImpact(amount decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

func (InfiniteLiquidity) CalculateAmount(priceImpact decimal.Decimal) decimal.Decimal {
	return infinity
}

// VolumeShareImpact caps fills to a percentage of the bar's volume and
// prices slippage quadratically in the share of that budget consumed,
// following the Zipline volume share model: consuming the whole budget
// moves the price by priceImpactPct.
type VolumeShareImpact struct {
	volumeLimit decimal.Decimal // fraction of bar volume fillable
	priceImpact decimal.Decimal // max slippage fraction at full consumption
	total       decimal.Decimal
	used        decimal.Decimal
}

// NewVolumeShareImpact builds the model from percentages, e.g. (25, 10)
// allows 25% of the bar volume with up to 10% slippage.
func NewVolumeShareImpact(volumeLimitPct, priceImpactPct decimal.Decimal) *VolumeShareImpact {
	hundred := decimal.NewFromInt(100)
	domain.Require(
		!volumeLimitPct.IsNegative() && volumeLimitPct.LessThanOrEqual(hundred),
		"liquidity.NewVolumeShareImpact", "invalid volume limit %s", volumeLimitPct,
	)
	domain.Require(
		!priceImpactPct.IsNegative(),
		"liquidity.NewVolumeShareImpact", "invalid price impact %s", priceImpactPct,
	)
	return &VolumeShareImpact{
		volumeLimit: volumeLimitPct.Div(hundred),
		priceImpact: priceImpactPct.Div(hundred),
	}
}

// NewDefaultVolumeShareImpact uses 25% of the bar volume and 10% max impact.
func NewDefaultVolumeShareImpact() *VolumeShareImpact {
	return NewVolumeShareImpact(decimal.NewFromInt(25), decimal.NewFromInt(10))
}

func (v *VolumeShareImpact) OnBar(bar domain.Bar) {
	v.total = bar.Volume.Mul(v.volumeLimit)
	v.used = decimal.Zero
}

func (v *VolumeShareImpact) AvailableLiquidity() decimal.Decimal {
	return v.total.Sub(v.used)
}

// slippage returns the cumulative price impact of having consumed used out
// of the bar's budget: (used/total)^2 * priceImpact.
func (v *VolumeShareImpact) slippage(used decimal.Decimal) decimal.Decimal {
	if v.total.IsZero() {
		return decimal.Zero
	}
	share := used.Div(v.total)
	return share.Mul(share).Mul(v.priceImpact)
}

func (v *VolumeShareImpact) TakeLiquidity(amount decimal.Decimal) decimal.Decimal {
	domain.Require(
		amount.LessThanOrEqual(v.AvailableLiquidity()),
		"liquidity.TakeLiquidity", "amount %s exceeds available %s", amount, v.AvailableLiquidity(),
	)
	before := v.slippage(v.used)
	v.used = v.used.Add(amount)
	return v.slippage(v.used).Sub(before)
}

func (v *VolumeShareImpact) CalculatePriceImpact(amount decimal.Decimal) decimal.Decimal {
	domain.Require(
		amount.LessThanOrEqual(v.AvailableLiquidity()),
		"liquidity.CalculatePriceImpact", "amount %s exceeds available %s", amount, v.AvailableLiquidity(),
	)
	return v.slippage(v.used.Add(amount)).Sub(v.slippage(v.used))
}

func (v *VolumeShareImpact) CalculateAmount(priceImpact decimal.Decimal) decimal.Decimal {
	if v.priceImpact.IsZero() || v.total.IsZero() {
		return decimal.Zero
	}
	// Invert slippage(used + amount) - slippage(used) = priceImpact.
	target := v.slippage(v.used).Add(priceImpact)
	share, _ := target.Div(v.priceImpact).Float64()
	used := decimal.NewFromFloat(math.Sqrt(share)).Mul(v.total)
	amount := used.Sub(v.used)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, v.AvailableLiquidity())
}
