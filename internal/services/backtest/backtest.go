// Package backtest orchestrates the full detection and simulation pipeline
// over a date range.
package backtest

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/indexalgo/weeklyshort/config"
	"github.com/indexalgo/weeklyshort/internal/calendar"
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/expiry"
	"github.com/indexalgo/weeklyshort/internal/services/hedge"
	"github.com/indexalgo/weeklyshort/internal/services/signals"
	"github.com/indexalgo/weeklyshort/internal/services/simulator"
	"github.com/indexalgo/weeklyshort/internal/services/weekly"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BarFeed supplies ordered, deduplicated hourly bars for a date range.
type BarFeed interface {
	Bars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error)
}

// TradeJournal records closed trades durably as the run progresses.
type TradeJournal interface {
	Append(runID string, trade domain.Trade) error
}

// Engine wires the weekly pipeline together.
type Engine struct {
	cfg       *config.Config
	feed      BarFeed
	store     simulator.PriceStore
	cal       calendar.Calendar
	journal   TradeJournal
	evaluator *signals.Evaluator
	sim       *simulator.Simulator
	log       *zap.Logger
}

// New constructs an Engine. The journal may be nil.
func New(cfg *config.Config, feed BarFeed, store simulator.PriceStore,
	cal calendar.Calendar, journal TradeJournal, log *zap.Logger) (*Engine, error) {

	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if feed == nil {
		return nil, errors.New("bar feed is required")
	}
	if store == nil {
		return nil, errors.New("option price store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	hedger := hedge.NewResolver(store, log)
	return &Engine{
		cfg:       cfg,
		feed:      feed,
		store:     store,
		cal:       cal,
		journal:   journal,
		evaluator: signals.NewEvaluator(log),
		sim:       simulator.New(store, hedger, log),
		log:       log,
	}, nil
}

func (e *Engine) params() simulator.Params {
	return simulator.Params{
		LotSize:          e.cfg.LotSize,
		LotsToTrade:      e.cfg.LotsToTrade,
		CommissionPerLot: e.cfg.CommissionPerLot,
		StrikeStep:       e.cfg.StrikeStep,
		HedgeOffsets:     e.cfg.HedgeOffsets,
		IncludeHedgePnL:  e.cfg.IncludeHedgePnL,
	}
}

// weekJob is a week paired with its prior-week context, ready to simulate.
type weekJob struct {
	week *domain.Week
	ctx  domain.WeeklyContext
}

// Run executes the batch backtest: fetch bars, build weeks, compute contexts
// in one forward pass, then evaluate and simulate week by week, grouped in
// monthly chunks with bounded parallelism inside each chunk.
func (e *Engine) Run(ctx context.Context) (domain.BacktestResult, error) {
	runID := uuid.NewString()
	e.log.Info("backtest started",
		zap.String("run_id", runID),
		zap.String("symbol", e.cfg.Symbol),
		zap.Time("from", e.cfg.From),
		zap.Time("to", e.cfg.To))

	bars, err := e.feed.Bars(ctx, e.cfg.Symbol, e.cfg.From, e.cfg.To)
	if err != nil {
		return domain.BacktestResult{}, errors.Wrap(err, "fetch bars")
	}

	weeks := weekly.BuildWeeks(bars, e.cal)
	chunks := chunkByMonth(e.contextualize(weeks))

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		trades  []domain.Trade
		missing []domain.MissingStrike
	)

	for _, chunk := range chunks {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for _, job := range chunk {
			g.Go(func() error {
				sig := e.evaluator.Evaluate(job.week, job.ctx)
				if sig == nil {
					return nil
				}

				exp, err := expiry.Resolve(job.week.Start, e.cal)
				if err != nil {
					return err
				}

				trade, miss := e.sim.Simulate(gctx, *sig, job.week, exp, e.params())

				mu.Lock()
				trades = append(trades, trade)
				missing = append(missing, miss...)
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return domain.BacktestResult{}, errors.Wrap(err, "simulate chunk")
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Signal.WeekStart.Before(trades[j].Signal.WeekStart)
	})

	if e.journal != nil {
		for _, t := range trades {
			if err := e.journal.Append(runID, t); err != nil {
				e.log.Warn("journal append failed", zap.String("trade_id", t.ID), zap.Error(err))
			}
		}
	}

	result := aggregate(runID, e.cfg.From, e.cfg.To, trades, missing)
	e.log.Info("backtest finished",
		zap.String("run_id", runID),
		zap.Int("trades", len(result.Trades)),
		zap.Int("missing_strikes", len(result.MissingStrikes)),
		zap.String("total_pnl", result.Overall.TotalPnL.String()))
	return result, nil
}

// DetectSignals exposes detection alone: at most one signal per week.
func (e *Engine) DetectSignals(weeks []domain.Week) []domain.Signal {
	return e.evaluator.DetectSignals(weeks, e.cfg.MinTick)
}

// Simulate is the single-trade entry point for incremental use. The week must
// be the signal's own week.
func (e *Engine) Simulate(ctx context.Context, sig domain.Signal, week *domain.Week) (domain.Trade, []domain.MissingStrike, error) {
	exp, err := expiry.Resolve(sig.WeekStart, e.cal)
	if err != nil {
		return domain.Trade{}, nil, err
	}
	trade, miss := e.sim.Simulate(ctx, sig, week, exp, e.params())
	return trade, miss, nil
}

// contextualize pairs each week with its calendar predecessor's context.
// Weeks without a valid prior week are dropped here, silently.
func (e *Engine) contextualize(weeks []domain.Week) []weekJob {
	byStart := make(map[string]*domain.Week, len(weeks))
	for i := range weeks {
		byStart[weeks[i].Start.Format("2006-01-02")] = &weeks[i]
	}

	jobs := make([]weekJob, 0, len(weeks))
	for i := range weeks {
		w := &weeks[i]
		prev := byStart[w.Start.AddDate(0, 0, -7).Format("2006-01-02")]
		c, ok := weekly.ComputeContext(prev, e.cfg.MinTick)
		if !ok {
			e.log.Debug("week skipped, no prior-week context", zap.Time("week_start", w.Start))
			continue
		}
		jobs = append(jobs, weekJob{week: w, ctx: c})
	}
	return jobs
}

// chunkByMonth groups jobs by the calendar month of the week start, keeping
// chronological order, so very large ranges are processed in bounded pieces.
func chunkByMonth(jobs []weekJob) [][]weekJob {
	var chunks [][]weekJob
	var currentKey string
	for _, j := range jobs {
		key := j.week.Start.Format("2006-01")
		if len(chunks) == 0 || key != currentKey {
			chunks = append(chunks, nil)
			currentKey = key
		}
		chunks[len(chunks)-1] = append(chunks[len(chunks)-1], j)
	}
	return chunks
}
