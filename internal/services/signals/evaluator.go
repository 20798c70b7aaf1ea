// Package signals evaluates the eight weekly trading signal predicates with
// their priority and tie-break rules.
package signals

import (
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/weekly"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Evaluator detects at most one signal per week.
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{log: log}
}

// Evaluate scans the week's bars in time order starting at the second bar,
// evaluating predicates in priority order at each bar, and returns the first
// match. Nil when no predicate matches any bar.
func (e *Evaluator) Evaluate(w *domain.Week, c domain.WeeklyContext) *domain.Signal {
	if w == nil || len(w.Bars) < 2 {
		return nil
	}

	st := newWeekState(w.FirstBar(), c)

	for _, b := range w.Bars[1:] {
		for _, p := range orderedPredicates {
			stopLoss, ok := p.Fn(b, c, st)
			if !ok {
				continue
			}

			sig := &domain.Signal{
				WeekStart:     w.Start,
				Type:          p.Type,
				EntryTime:     b.Timestamp,
				EntryPrice:    b.Close,
				OptionType:    p.Type.OptionType(),
				StopLossPrice: stopLoss,
				FirstBar:      st.firstBar,
			}

			e.log.Debug("signal detected",
				zap.Time("week_start", w.Start),
				zap.String("type", sig.Type.String()),
				zap.Time("entry_time", sig.EntryTime),
				zap.String("entry_price", sig.EntryPrice.String()),
				zap.String("stop_loss", sig.StopLossPrice.String()))

			return sig
		}

		st.observe(b, c)
	}

	return nil
}

// DetectSignals runs detection over a chronological week sequence. A week
// whose calendar predecessor is absent or empty has no context and is
// skipped silently.
func (e *Evaluator) DetectSignals(weeks []domain.Week, minTick decimal.Decimal) []domain.Signal {
	byStart := make(map[string]*domain.Week, len(weeks))
	for i := range weeks {
		byStart[weeks[i].Start.Format("2006-01-02")] = &weeks[i]
	}

	var out []domain.Signal
	for i := range weeks {
		w := &weeks[i]
		prev := byStart[w.Start.AddDate(0, 0, -7).Format("2006-01-02")]
		c, ok := weekly.ComputeContext(prev, minTick)
		if !ok {
			continue
		}
		if sig := e.Evaluate(w, c); sig != nil {
			out = append(out, *sig)
		}
	}
	return out
}
