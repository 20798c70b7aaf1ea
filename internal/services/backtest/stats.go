package backtest

import (
	"sort"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
)

// aggregate rolls per-trade results into per-signal and overall statistics
// and deduplicates the missing-strike records.
func aggregate(runID string, from, to time.Time, trades []domain.Trade, missing []domain.MissingStrike) domain.BacktestResult {
	perSignal := make(map[domain.SignalType]domain.SignalStats)

	var overall domain.SignalStats
	for _, t := range trades {
		s := perSignal[t.Signal.Type]
		s.Type = t.Signal.Type
		count(&s, t)
		perSignal[t.Signal.Type] = s
		count(&overall, t)
	}

	return domain.BacktestResult{
		RunID:          runID,
		From:           from,
		To:             to,
		Trades:         trades,
		PerSignal:      perSignal,
		Overall:        overall,
		MissingStrikes: dedupe(missing),
	}
}

func count(s *domain.SignalStats, t domain.Trade) {
	s.Trades++
	switch t.Outcome {
	case domain.OutcomeProfit:
		s.Profits++
	case domain.OutcomeLoss:
		s.Losses++
	case domain.OutcomeBreakeven:
		s.Breakevens++
	case domain.OutcomeDataMissing:
		s.DataMissing++
	}
	s.TotalPnL = s.TotalPnL.Add(t.NetPnL)
}

func dedupe(missing []domain.MissingStrike) []domain.MissingStrike {
	seen := make(map[string]struct{}, len(missing))
	out := make([]domain.MissingStrike, 0, len(missing))
	for _, m := range missing {
		key := m.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
