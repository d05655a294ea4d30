package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pair is a trading pair. The base symbol is the asset being traded and the
// quote symbol is the asset it is priced in. Equality is structural, so
// pairs can be used as map keys.
type Pair struct {
	BaseSymbol  string
	QuoteSymbol string
}

func (p Pair) String() string {
	return p.BaseSymbol + "/" + p.QuoteSymbol
}

// Contract describes a futures contract: a pair plus the intraday margin
// required to open one unit and the contract multiplier (quote value of a
// one point move).
type Contract struct {
	Pair
	MarginRequirement decimal.Decimal
	Multiplier        int
}

func (c Contract) String() string {
	return fmt.Sprintf("%s/%s x%d", c.BaseSymbol, c.QuoteSymbol, c.Multiplier)
}
