package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHedgeLegPnL(t *testing.T) {
	leg := HedgeLeg{
		Offset:     100,
		Strike:     decimal.NewFromInt(24650),
		EntryPrice: decimal.NewFromInt(100),
		ExitPrice:  decimal.NewFromInt(150),
		Available:  true,
	}

	// bought leg: (exit - entry) * lotSize * lots
	assert.True(t, leg.PnL(75, 1).Equal(decimal.NewFromInt(3750)))
	assert.True(t, leg.PnL(75, 2).Equal(decimal.NewFromInt(7500)))

	leg.Available = false
	assert.True(t, leg.PnL(75, 1).IsZero())
}

func TestMissingStrikeKey(t *testing.T) {
	m := MissingStrike{
		Strike:     decimal.NewFromInt(24550),
		OptionType: OptionPE,
		Expiry:     time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "24550|PE|2024-01-11", m.Key())
}

func TestSignalStatsWinRate(t *testing.T) {
	s := SignalStats{Trades: 5, Profits: 3, Losses: 1, DataMissing: 1}
	assert.True(t, s.WinRate().Equal(decimal.NewFromInt(75)))

	empty := SignalStats{Trades: 2, DataMissing: 2}
	assert.True(t, empty.WinRate().IsZero())
}
