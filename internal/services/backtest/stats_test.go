package backtest

import (
	"testing"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(st domain.SignalType, outcome domain.Outcome, pnl int64) domain.Trade {
	return domain.Trade{
		Signal:  domain.Signal{Type: st, WeekStart: week2},
		Outcome: outcome,
		NetPnL:  di(pnl),
	}
}

func TestAggregate(t *testing.T) {
	trades := []domain.Trade{
		trade(domain.SignalBearTrap, domain.OutcomeProfit, 5000),
		trade(domain.SignalBearTrap, domain.OutcomeLoss, -2000),
		trade(domain.SignalResistanceHold, domain.OutcomeBreakeven, 0),
		trade(domain.SignalResistanceHold, domain.OutcomeDataMissing, 0),
	}

	res := aggregate("run-1", week1, week2, trades, nil)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 4, res.Overall.Trades)
	assert.Equal(t, 1, res.Overall.Profits)
	assert.Equal(t, 1, res.Overall.Losses)
	assert.Equal(t, 1, res.Overall.Breakevens)
	assert.Equal(t, 1, res.Overall.DataMissing)
	assert.True(t, res.Overall.TotalPnL.Equal(di(3000)))

	s1 := res.PerSignal[domain.SignalBearTrap]
	assert.Equal(t, domain.SignalBearTrap, s1.Type)
	assert.Equal(t, 2, s1.Trades)
	assert.True(t, s1.TotalPnL.Equal(di(3000)))

	s3 := res.PerSignal[domain.SignalResistanceHold]
	assert.Equal(t, 2, s3.Trades)
	assert.Equal(t, 1, s3.DataMissing)
}

func TestDedupeMissingStrikes(t *testing.T) {
	expiry := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	missing := []domain.MissingStrike{
		{Strike: di(24650), OptionType: domain.OptionPE, Expiry: expiry},
		{Strike: di(24550), OptionType: domain.OptionPE, Expiry: expiry},
		{Strike: di(24650), OptionType: domain.OptionPE, Expiry: expiry},
		{Strike: di(24650), OptionType: domain.OptionCE, Expiry: expiry},
	}

	out := dedupe(missing)
	require.Len(t, out, 3)

	// sorted by key, duplicates collapsed
	assert.Equal(t, "24550|PE|2024-01-11", out[0].Key())
	assert.Equal(t, "24650|CE|2024-01-11", out[1].Key())
	assert.Equal(t, "24650|PE|2024-01-11", out[2].Key())
}
