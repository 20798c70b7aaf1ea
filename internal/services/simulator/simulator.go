// Package simulator walks a trade from signal entry to stop-loss breach or
// contract expiry and classifies the result.
package simulator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/hedge"
	"github.com/indexalgo/weeklyshort/internal/services/strikes"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// expiry-day close window used when an exit time crosses the expiry date
// line: prices are looked up at 15:15 exchange time of the expiry day.
const (
	expiryCloseHour   = 15
	expiryCloseMinute = 15
)

// PriceStore is the external option price lookup consumed by the simulator.
type PriceStore interface {
	PriceAt(ctx context.Context, strike decimal.Decimal, optionType domain.OptionType, expiry time.Time, ts time.Time) (decimal.Decimal, bool, error)
}

// Params are the per-run trading parameters. All values are validated by the
// configuration layer before any simulation starts.
type Params struct {
	LotSize          int64
	LotsToTrade      int64
	CommissionPerLot decimal.Decimal
	StrikeStep       decimal.Decimal
	HedgeOffsets     []int64
	IncludeHedgePnL  bool
}

// Simulator runs single-trade simulations.
type Simulator struct {
	store  PriceStore
	hedger *hedge.Resolver
	log    *zap.Logger
}

// New constructs a Simulator.
func New(store PriceStore, hedger *hedge.Resolver, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{store: store, hedger: hedger, log: log}
}

// Simulate opens a trade at the bar following the signal bar, monitors each
// subsequent bar up to the adjusted expiry for a stop-loss breach, and closes
// the position. Missing option prices never abort the run: they yield a
// DataMissing trade plus the missing contract tuples.
func (s *Simulator) Simulate(ctx context.Context, sig domain.Signal, week *domain.Week,
	exp domain.ExpiryInfo, p Params) (domain.Trade, []domain.MissingStrike) {

	trade := domain.Trade{
		ID:             uuid.NewString(),
		Signal:         sig,
		MainStrike:     strikes.MainStrike(sig.StopLossPrice, p.StrikeStep),
		MainOptionType: sig.OptionType,
		Expiry:         exp,
	}

	signalIdx := barIndexAt(week, sig.EntryTime)
	trade.EntryTime = nextBarTime(week, signalIdx)

	monitoring := monitoringBars(week, signalIdx, exp.ActualExpiry)
	trade.ExitTime, trade.ExitReason = resolveExit(monitoring, sig, exp)

	exitLookup := snapToExpiry(trade.ExitTime, exp.ActualExpiry)

	var missing []domain.MissingStrike

	entry, entryOK := s.lookup(ctx, trade.MainStrike, sig.OptionType, exp.ActualExpiry, trade.EntryTime)
	exit, exitOK := s.lookup(ctx, trade.MainStrike, sig.OptionType, exp.ActualExpiry, exitLookup)
	if !entryOK || !exitOK {
		missing = append(missing, domain.MissingStrike{
			Strike:     trade.MainStrike,
			OptionType: sig.OptionType,
			Expiry:     exp.ActualExpiry,
		})
	}

	if s.hedger != nil {
		trade.HedgeLegs = s.hedger.Legs(ctx, trade.MainStrike, sig.OptionType,
			exp.ActualExpiry, p.HedgeOffsets, trade.EntryTime, exitLookup)
		for _, leg := range trade.HedgeLegs {
			if leg.Available {
				trade.HedgePnL = trade.HedgePnL.Add(leg.PnL(p.LotSize, p.LotsToTrade))
				continue
			}
			missing = append(missing, domain.MissingStrike{
				Strike:     leg.Strike,
				OptionType: sig.OptionType,
				Expiry:     exp.ActualExpiry,
			})
		}
	}

	if !entryOK || !exitOK {
		trade.Outcome = domain.OutcomeDataMissing
		s.log.Warn("option prices missing",
			zap.String("trade_id", trade.ID),
			zap.String("strike", trade.MainStrike.String()),
			zap.Time("expiry", exp.ActualExpiry))
		return trade, missing
	}

	trade.MainEntryPrice = entry
	trade.MainExitPrice = exit
	trade.PricesPresent = true

	qty := decimal.NewFromInt(p.LotSize * p.LotsToTrade)
	commission := p.CommissionPerLot.Mul(decimal.NewFromInt(p.LotsToTrade))
	mainNet := entry.Sub(exit).Mul(qty).Sub(commission)

	// Classification comes from the main leg alone; hedge P&L is folded into
	// the reported net only when configured.
	switch {
	case mainNet.IsPositive():
		trade.Outcome = domain.OutcomeProfit
	case mainNet.IsNegative():
		trade.Outcome = domain.OutcomeLoss
	default:
		trade.Outcome = domain.OutcomeBreakeven
	}

	trade.NetPnL = mainNet
	if p.IncludeHedgePnL {
		trade.NetPnL = trade.NetPnL.Add(trade.HedgePnL)
	}

	return trade, missing
}

func (s *Simulator) lookup(ctx context.Context, strike decimal.Decimal, t domain.OptionType,
	expiry, ts time.Time) (decimal.Decimal, bool) {

	price, ok, err := s.store.PriceAt(ctx, strike, t, expiry, ts)
	if err != nil {
		s.log.Warn("price lookup failed", zap.String("strike", strike.String()), zap.Error(err))
		return decimal.Zero, false
	}
	return price, ok
}

// barIndexAt returns the slice index of the bar at ts, or -1.
func barIndexAt(week *domain.Week, ts time.Time) int {
	for i, b := range week.Bars {
		if b.Timestamp.Equal(ts) {
			return i
		}
	}
	return -1
}

// nextBarTime is the following bar's timestamp, or one hour past the current
// bar when the week has no later bar.
func nextBarTime(week *domain.Week, idx int) time.Time {
	if idx >= 0 && idx+1 < len(week.Bars) {
		return week.Bars[idx+1].Timestamp
	}
	if idx >= 0 {
		return week.Bars[idx].Timestamp.Add(time.Hour)
	}
	return week.LastBar().Timestamp.Add(time.Hour)
}

// monitoringBars returns the bars after the signal bar up to and including
// the expiry date.
func monitoringBars(week *domain.Week, signalIdx int, actualExpiry time.Time) []domain.WeekBar {
	if signalIdx < 0 || signalIdx+1 >= len(week.Bars) {
		return nil
	}
	var out []domain.WeekBar
	for _, b := range week.Bars[signalIdx+1:] {
		if b.Timestamp.After(endOfDate(actualExpiry)) {
			break
		}
		out = append(out, b)
	}
	return out
}

// resolveExit finds the first stop-loss breach; absent one the trade is held
// to the last bar at or before expiry.
func resolveExit(monitoring []domain.WeekBar, sig domain.Signal, exp domain.ExpiryInfo) (time.Time, domain.ExitReason) {
	for i, b := range monitoring {
		if !breached(b, sig) {
			continue
		}
		if i+1 < len(monitoring) {
			return monitoring[i+1].Timestamp, domain.ExitStopLoss
		}
		return b.Timestamp.Add(time.Hour), domain.ExitStopLoss
	}

	if len(monitoring) > 0 {
		return monitoring[len(monitoring)-1].Timestamp, domain.ExitHeldToExpiry
	}
	return expiryClose(exp.ActualExpiry), domain.ExitHeldToExpiry
}

// breached checks the index-level stop: sold puts are breached on a close at
// or below the stop-loss level, sold calls at or above it.
func breached(b domain.WeekBar, sig domain.Signal) bool {
	if sig.OptionType == domain.OptionPE {
		return b.Close.LessThanOrEqual(sig.StopLossPrice)
	}
	return b.Close.GreaterThanOrEqual(sig.StopLossPrice)
}

// snapToExpiry clamps lookups past the expiry date line to the expiry day's
// close window.
func snapToExpiry(ts, actualExpiry time.Time) time.Time {
	if ts.After(endOfDate(actualExpiry)) {
		return expiryClose(actualExpiry)
	}
	return ts
}

func expiryClose(expiry time.Time) time.Time {
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(),
		expiryCloseHour, expiryCloseMinute, 0, 0, expiry.Location())
}

func endOfDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}
