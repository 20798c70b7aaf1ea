package simulator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/hedge"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	expiry = time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
)

type fakeStore struct {
	prices map[string]decimal.Decimal
}

func newFakeStore() *fakeStore {
	return &fakeStore{prices: make(map[string]decimal.Decimal)}
}

func (f *fakeStore) key(strike decimal.Decimal, t domain.OptionType, ts time.Time) string {
	return fmt.Sprintf("%s|%s|%d", strike.String(), t, ts.Unix())
}

func (f *fakeStore) set(strike int64, t domain.OptionType, ts time.Time, price int64) {
	f.prices[f.key(decimal.NewFromInt(strike), t, ts)] = decimal.NewFromInt(price)
}

func (f *fakeStore) PriceAt(_ context.Context, strike decimal.Decimal, t domain.OptionType,
	_ time.Time, ts time.Time) (decimal.Decimal, bool, error) {

	p, ok := f.prices[f.key(strike, t, ts)]
	return p, ok, nil
}

func di(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func wbar(idx int, ts time.Time, o, h, l, c int64) domain.WeekBar {
	return domain.WeekBar{
		Bar:   domain.Bar{Timestamp: ts, Open: di(o), High: di(h), Low: di(l), Close: di(c)},
		Index: idx,
		Day:   ts.Weekday(),
	}
}

func peSignal() domain.Signal {
	return domain.Signal{
		WeekStart:     monday,
		Type:          domain.SignalBearTrap,
		EntryTime:     monday.Add(10 * time.Hour),
		EntryPrice:    di(24920),
		OptionType:    domain.OptionPE,
		StopLossPrice: di(24740),
	}
}

func expiryInfo() domain.ExpiryInfo {
	return domain.ExpiryInfo{
		WeekStart:       monday,
		NominalExpiry:   expiry,
		ActualExpiry:    expiry,
		ExpiryDayOfWeek: time.Thursday,
	}
}

func params() Params {
	return Params{
		LotSize:          75,
		LotsToTrade:      1,
		CommissionPerLot: di(40),
		StrikeStep:       di(50),
	}
}

func newSim(store *fakeStore) *Simulator {
	return New(store, hedge.NewResolver(store, nil), nil)
}

func TestSimulateStopLossBreach(t *testing.T) {
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24960, 24840, 24850),
		wbar(2, monday.Add(10*time.Hour), 24850, 24930, 24845, 24920),
		wbar(3, monday.Add(11*time.Hour), 24920, 24930, 24700, 24720), // close <= SL breaches
		wbar(4, monday.Add(12*time.Hour), 24720, 24760, 24690, 24750),
	}}

	entry := monday.Add(11 * time.Hour)
	exit := monday.Add(12 * time.Hour)

	store := newFakeStore()
	store.set(24750, domain.OptionPE, entry, 180)
	store.set(24750, domain.OptionPE, exit, 240)

	p := params()
	p.HedgeOffsets = []int64{100, 200}
	store.set(24650, domain.OptionPE, entry, 100)
	store.set(24650, domain.OptionPE, exit, 150)
	// hedge at 24550 has no data

	trade, missing := newSim(store).Simulate(context.Background(), peSignal(), w, expiryInfo(), p)

	assert.True(t, trade.MainStrike.Equal(di(24750)))
	assert.Equal(t, entry, trade.EntryTime)
	assert.Equal(t, exit, trade.ExitTime)
	assert.Equal(t, domain.ExitStopLoss, trade.ExitReason)
	assert.Equal(t, domain.OutcomeLoss, trade.Outcome)
	assert.True(t, trade.PricesPresent)

	// (180 - 240) * 75 - 40, hedge excluded from the net by default
	assert.True(t, trade.NetPnL.Equal(di(-4540)), "got %s", trade.NetPnL)
	assert.True(t, trade.HedgePnL.Equal(di(3750)), "got %s", trade.HedgePnL)

	require.Len(t, trade.HedgeLegs, 2)
	assert.True(t, trade.HedgeLegs[0].Available)
	assert.False(t, trade.HedgeLegs[1].Available)

	require.Len(t, missing, 1)
	assert.True(t, missing[0].Strike.Equal(di(24550)))
	assert.Equal(t, domain.OptionPE, missing[0].OptionType)
}

func TestSimulateIncludeHedgePnL(t *testing.T) {
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24960, 24840, 24850),
		wbar(2, monday.Add(10*time.Hour), 24850, 24930, 24845, 24920),
		wbar(3, monday.Add(11*time.Hour), 24920, 24930, 24700, 24720),
		wbar(4, monday.Add(12*time.Hour), 24720, 24760, 24690, 24750),
	}}

	entry := monday.Add(11 * time.Hour)
	exit := monday.Add(12 * time.Hour)

	store := newFakeStore()
	store.set(24750, domain.OptionPE, entry, 180)
	store.set(24750, domain.OptionPE, exit, 240)
	store.set(24650, domain.OptionPE, entry, 100)
	store.set(24650, domain.OptionPE, exit, 150)

	p := params()
	p.HedgeOffsets = []int64{100}
	p.IncludeHedgePnL = true

	trade, _ := newSim(store).Simulate(context.Background(), peSignal(), w, expiryInfo(), p)

	// outcome still classifies from the main leg alone
	assert.Equal(t, domain.OutcomeLoss, trade.Outcome)
	assert.True(t, trade.NetPnL.Equal(di(-790)), "got %s", trade.NetPnL)
}

func TestSimulateHeldToExpiry(t *testing.T) {
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24960, 24840, 24850),
		wbar(2, monday.Add(10*time.Hour), 24850, 24930, 24845, 24920),
		wbar(3, monday.Add(11*time.Hour), 24920, 24990, 24900, 24950),
		wbar(4, monday.Add(12*time.Hour), 24950, 25010, 24940, 25000),
	}}

	entry := monday.Add(11 * time.Hour)
	exit := monday.Add(12 * time.Hour)

	store := newFakeStore()
	store.set(24750, domain.OptionPE, entry, 180)
	store.set(24750, domain.OptionPE, exit, 60)

	trade, missing := newSim(store).Simulate(context.Background(), peSignal(), w, expiryInfo(), params())

	assert.Equal(t, exit, trade.ExitTime)
	assert.Equal(t, domain.ExitHeldToExpiry, trade.ExitReason)
	assert.Equal(t, domain.OutcomeProfit, trade.Outcome)
	// (180 - 60) * 75 - 40
	assert.True(t, trade.NetPnL.Equal(di(8960)), "got %s", trade.NetPnL)
	assert.Empty(t, missing)
}

func TestSimulateSignalOnLastBarSnapsExitToExpiryClose(t *testing.T) {
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24960, 24840, 24850),
		wbar(2, monday.Add(10*time.Hour), 24850, 24930, 24845, 24920),
	}}

	entry := monday.Add(11 * time.Hour) // one hour after the signal bar
	exit := time.Date(2024, 1, 11, 15, 15, 0, 0, time.UTC)

	store := newFakeStore()
	store.set(24750, domain.OptionPE, entry, 200)
	store.set(24750, domain.OptionPE, exit, 5)

	trade, missing := newSim(store).Simulate(context.Background(), peSignal(), w, expiryInfo(), params())

	assert.Equal(t, entry, trade.EntryTime)
	assert.Equal(t, exit, trade.ExitTime)
	assert.Equal(t, domain.ExitHeldToExpiry, trade.ExitReason)
	assert.Equal(t, domain.OutcomeProfit, trade.Outcome)
	assert.Empty(t, missing)
}

func TestSimulateCallBreachDirection(t *testing.T) {
	sig := domain.Signal{
		WeekStart:     monday,
		Type:          domain.SignalResistanceHold,
		EntryTime:     monday.Add(10 * time.Hour),
		EntryPrice:    di(24900),
		OptionType:    domain.OptionCE,
		StopLossPrice: di(25000),
	}
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24990, 24840, 24880),
		wbar(2, monday.Add(10*time.Hour), 24880, 24930, 24845, 24900),
		wbar(3, monday.Add(11*time.Hour), 24900, 25060, 24890, 25050), // close >= SL breaches
		wbar(4, monday.Add(12*time.Hour), 25050, 25100, 25000, 25080),
	}}

	entry := monday.Add(11 * time.Hour)
	exit := monday.Add(12 * time.Hour)

	store := newFakeStore()
	store.set(25000, domain.OptionCE, entry, 120)
	store.set(25000, domain.OptionCE, exit, 210)

	trade, _ := newSim(store).Simulate(context.Background(), sig, w, expiryInfo(), params())

	assert.True(t, trade.MainStrike.Equal(di(25000)))
	assert.Equal(t, exit, trade.ExitTime)
	assert.Equal(t, domain.ExitStopLoss, trade.ExitReason)
	assert.Equal(t, domain.OutcomeLoss, trade.Outcome)
}

func TestSimulateMissingMainPrices(t *testing.T) {
	w := &domain.Week{Start: monday, Bars: []domain.WeekBar{
		wbar(1, monday.Add(9*time.Hour), 24950, 24960, 24840, 24850),
		wbar(2, monday.Add(10*time.Hour), 24850, 24930, 24845, 24920),
		wbar(3, monday.Add(11*time.Hour), 24920, 24990, 24900, 24950),
	}}

	trade, missing := newSim(newFakeStore()).Simulate(context.Background(), peSignal(), w, expiryInfo(), params())

	assert.Equal(t, domain.OutcomeDataMissing, trade.Outcome)
	assert.False(t, trade.PricesPresent)
	assert.True(t, trade.NetPnL.IsZero())

	require.Len(t, missing, 1)
	assert.True(t, missing[0].Strike.Equal(di(24750)))
	assert.Equal(t, expiry, missing[0].Expiry)
}
