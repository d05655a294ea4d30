package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"backtest_go/internal/account"
	"backtest_go/internal/domain"
	"backtest_go/internal/exchange"
	"backtest_go/internal/infra"
	"backtest_go/internal/infra/storage"
	"backtest_go/internal/liquidity"
	"backtest_go/internal/order"
)

// Bootstrap orchestrates the backtest startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Ledger    *account.AccountBalances
	Index     *exchange.OrderIndex
	Processor *exchange.Processor
	Journal   *storage.Journal
	Liquidity liquidity.Strategy
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize wires config, logger, ledger, journal and processor.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping backtest",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version))

	b.Ledger = account.NewAccountBalances(domain.Amounts(cfg.Backtest.InitialBalances))
	b.Index = exchange.NewOrderIndex()
	b.Liquidity = newLiquidityStrategy(cfg)

	var recorder exchange.FillRecorder
	if cfg.Journal.Enabled {
		journal, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal
		recorder = journal
		slog.Info("✅ Journal initialized", slog.String("path", cfg.Journal.Path))
	}

	b.Processor = exchange.NewProcessor(b.Ledger, newFeeStrategy(cfg), logger, recorder)

	return nil
}

func newLiquidityStrategy(cfg *infra.Config) liquidity.Strategy {
	if cfg.Backtest.Liquidity.Model == infra.LiquidityModelVolumeShare {
		return liquidity.NewVolumeShareImpact(
			cfg.Backtest.Liquidity.VolumeLimitPct,
			cfg.Backtest.Liquidity.PriceImpactPct,
		)
	}
	return liquidity.InfiniteLiquidity{}
}

func newFeeStrategy(cfg *infra.Config) exchange.FeeStrategy {
	if cfg.Backtest.Fees.Percentage.IsZero() {
		return exchange.NoFees{}
	}
	return exchange.NewPercentageFee(cfg.Backtest.Fees.Percentage, cfg.Backtest.Fees.Minimum)
}

// SubmitOrder registers an order and reserves its hold on the ledger. The
// required balance is estimated from the reference price, the way a
// validation layer in front of a real exchange would size it.
func (b *Bootstrap) SubmitOrder(o order.Order, referencePrice decimal.Decimal) {
	required := domain.Amounts{}
	if o.Operation() == domain.Buy {
		required[o.Pair().QuoteSymbol] = o.Amount().Mul(referencePrice)
	} else {
		required[o.Pair().BaseSymbol] = o.Amount()
	}
	b.Ledger.OrderAccepted(o, required)
	b.Index.AddOrder(o)
	if b.Journal != nil {
		if err := b.Journal.SaveOrder(o); err != nil {
			slog.Error("Failed to journal order", slog.String("order_id", o.ID()), slog.Any("error", err))
		}
	}
	slog.Info("Order accepted",
		slog.String("order_id", o.ID()),
		slog.String("pair", o.Pair().String()),
		slog.String("operation", string(o.Operation())),
		slog.String("amount", o.Amount().String()))
}

// ProcessBar runs every open order for the bar's pair against it, in
// submission order, resetting the liquidity budget first.
func (b *Bootstrap) ProcessBar(bar domain.Bar) {
	b.Liquidity.OnBar(bar)
	for _, o := range b.Index.GetOpenOrders(bar.Pair) {
		b.Processor.ProcessOrder(o, bar, b.Liquidity)
	}
}

// RunDemo feeds a small scripted bar sequence through the processor so a
// fresh checkout produces visible output.
func (b *Bootstrap) RunDemo() error {
	pair := domain.Pair{BaseSymbol: "BTC", QuoteSymbol: "USD"}
	when := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	buy := order.NewMarketOrder(exchange.NewOrderID(), domain.Buy, pair, decimal.NewFromInt(1))
	b.SubmitOrder(buy, decimal.NewFromInt(51000))

	sell := order.NewLimitOrder(exchange.NewOrderID(), domain.Sell, pair, decimal.NewFromInt(1), decimal.NewFromInt(52000))

	script := [][5]string{
		{"50000", "50500", "49800", "50200", "1200"},
		{"50200", "52500", "50100", "52100", "1500"},
		{"52100", "52400", "51700", "51900", "900"},
	}
	for i, row := range script {
		bar, err := domain.NewBar(
			when.Add(time.Duration(i)*time.Hour),
			pair,
			decimal.RequireFromString(row[0]),
			decimal.RequireFromString(row[1]),
			decimal.RequireFromString(row[2]),
			decimal.RequireFromString(row[3]),
			decimal.RequireFromString(row[4]),
		)
		if err != nil {
			return fmt.Errorf("bad demo bar: %w", err)
		}

		// Flip to the sell once the buy is done, simulating a strategy.
		if !buy.IsOpen() && sell.IsOpen() {
			if _, registered := b.Index.GetOrder(sell.ID()); !registered {
				b.SubmitOrder(sell, decimal.NewFromInt(52000))
			}
		}

		b.ProcessBar(bar)
	}

	for _, symbol := range b.Ledger.GetSymbols() {
		slog.Info("Final balance",
			slog.String("symbol", symbol),
			slog.String("available", b.Ledger.GetAvailableBalance(symbol).String()),
			slog.String("on_hold", b.Ledger.GetBalanceOnHold(symbol).String()))
	}
	return nil
}
