package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRun(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer rec.Close()

	res := domain.BacktestResult{
		RunID: "run-1",
		From:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Trades: []domain.Trade{
			{
				ID: "trade-1",
				Signal: domain.Signal{
					Type:      domain.SignalBearTrap,
					WeekStart: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
				},
				MainStrike:     decimal.NewFromInt(24750),
				MainOptionType: domain.OptionPE,
				EntryTime:      time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC),
				ExitTime:       time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
				ExitReason:     domain.ExitStopLoss,
				Outcome:        domain.OutcomeLoss,
				NetPnL:         decimal.NewFromInt(-4540),
			},
		},
		Overall: domain.SignalStats{Trades: 1, Losses: 1, TotalPnL: decimal.NewFromInt(-4540)},
		MissingStrikes: []domain.MissingStrike{
			{Strike: decimal.NewFromInt(24550), OptionType: domain.OptionPE,
				Expiry: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)},
		},
	}

	require.NoError(t, rec.SaveRun(res))

	var trades, runs, missing int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM trades WHERE run_id = 'run-1'`).Scan(&trades))
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM missing_strikes WHERE run_id = 'run-1'`).Scan(&missing))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, trades)
	assert.Equal(t, 1, missing)

	var outcome string
	require.NoError(t, rec.db.QueryRow(`SELECT outcome FROM trades WHERE trade_id = 'trade-1'`).Scan(&outcome))
	assert.Equal(t, "loss", outcome)
}

func TestSaveRunRejectsDuplicateRunID(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer rec.Close()

	res := domain.BacktestResult{
		RunID: "run-1",
		From:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, rec.SaveRun(res))
	require.Error(t, rec.SaveRun(res))
}
