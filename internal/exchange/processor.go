package exchange

import (
	"log/slog"

	"backtest_go/internal/domain"
	"backtest_go/internal/liquidity"
	"backtest_go/internal/order"
)

// Ledger is the slice of the account ledger the processor needs. Both
// account.AccountBalances and account.FuturesAccountBalances satisfy it.
type Ledger interface {
	OrderAccepted(o order.Order, requiredBalance domain.Amounts)
	OrderUpdated(o order.Order, balanceUpdates domain.Amounts)
}

// FillRecorder receives every fill the processor applies. Implementations
// must not mutate the order.
type FillRecorder interface {
	RecordFill(o order.Order, fill order.Fill) error
}

// Processor drives a single order against a single bar: it asks the order
// for its balance updates, consumes liquidity, charges fees and reconciles
// the ledger. The caller owns ordering: bars in chronological order, and a
// liquidity strategy reset once per bar and shared by the orders processed
// against it.
type Processor struct {
	ledger   Ledger
	fees     FeeStrategy
	logger   *slog.Logger
	recorder FillRecorder // optional
}

func NewProcessor(ledger Ledger, fees FeeStrategy, logger *slog.Logger, recorder FillRecorder) *Processor {
	if fees == nil {
		fees = NoFees{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{ledger: ledger, fees: fees, logger: logger, recorder: recorder}
}

// ProcessOrder evaluates one order against one bar. No fill invokes the
// order's not-filled policy, which for fill-or-kill kinds cancels it and
// releases its hold. A fill is applied to the order and the ledger in one
// step so holds shrink in the same order fills occur.
func (p *Processor) ProcessOrder(o order.Order, bar domain.Bar, ls liquidity.Strategy) {
	updates := domain.RemoveEmptyAmounts(o.GetBalanceUpdates(bar, ls))
	if updates.IsEmpty() {
		o.NotFilled()
		if !o.IsOpen() {
			// Fill-or-kill kind canceled itself: release the hold.
			p.ledger.OrderUpdated(o, nil)
			p.logger.Debug("order canceled on no fill",
				slog.String("order_id", o.ID()),
				slog.Time("bar", bar.Timestamp))
		}
		return
	}

	ls.TakeLiquidity(updates.Get(o.Pair().BaseSymbol).Abs())
	fees := p.fees.CalculateFees(o, updates)
	o.AddFill(bar.Timestamp, updates, fees)
	p.ledger.OrderUpdated(o, domain.AddAmounts(updates, fees))

	fill := o.Fills()[len(o.Fills())-1]
	if p.recorder != nil {
		if err := p.recorder.RecordFill(o, fill); err != nil {
			p.logger.Error("failed to record fill",
				slog.String("order_id", o.ID()),
				slog.Any("error", err))
		}
	}
	p.logger.Info("order filled",
		slog.String("order_id", o.ID()),
		slog.String("pair", o.Pair().String()),
		slog.String("operation", string(o.Operation())),
		slog.String("price", fill.Price.String()),
		slog.String("state", string(o.State())))
}
