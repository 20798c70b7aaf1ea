package hedge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	prices map[string]decimal.Decimal
	failAt map[string]struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prices: make(map[string]decimal.Decimal),
		failAt: make(map[string]struct{}),
	}
}

func key(strike decimal.Decimal, t domain.OptionType, ts time.Time) string {
	return fmt.Sprintf("%s|%s|%d", strike.String(), t, ts.Unix())
}

func (f *fakeStore) set(strike int64, t domain.OptionType, ts time.Time, price int64) {
	f.prices[key(decimal.NewFromInt(strike), t, ts)] = decimal.NewFromInt(price)
}

func (f *fakeStore) PriceAt(_ context.Context, strike decimal.Decimal, t domain.OptionType,
	_ time.Time, ts time.Time) (decimal.Decimal, bool, error) {

	if _, ok := f.failAt[strike.String()]; ok {
		return decimal.Zero, false, errors.New("store unavailable")
	}
	p, ok := f.prices[key(strike, t, ts)]
	return p, ok, nil
}

func TestLegs(t *testing.T) {
	entry := time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	main := decimal.NewFromInt(24750)

	store := newFakeStore()
	store.set(24650, domain.OptionPE, entry, 100)
	store.set(24650, domain.OptionPE, exit, 150)
	// 24550 has no data at all
	store.set(24450, domain.OptionPE, entry, 40)
	// 24450 lacks the exit price

	legs := NewResolver(store, nil).Legs(context.Background(), main, domain.OptionPE,
		expiry, []int64{100, 200, 300}, entry, exit)
	require.Len(t, legs, 3)

	assert.True(t, legs[0].Available)
	assert.True(t, legs[0].Strike.Equal(decimal.NewFromInt(24650)))
	assert.True(t, legs[0].EntryPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, legs[0].ExitPrice.Equal(decimal.NewFromInt(150)))

	assert.False(t, legs[1].Available)
	assert.True(t, legs[1].Strike.Equal(decimal.NewFromInt(24550)))

	assert.False(t, legs[2].Available)
	assert.True(t, legs[2].Strike.Equal(decimal.NewFromInt(24450)))
}

func TestLegsLookupErrorMarksUnavailable(t *testing.T) {
	entry := time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.failAt["24850"] = struct{}{}

	legs := NewResolver(store, nil).Legs(context.Background(), decimal.NewFromInt(24750),
		domain.OptionCE, expiry, []int64{100}, entry, exit)
	require.Len(t, legs, 1)

	// a failing store never fails the trade, the leg is simply absent
	assert.False(t, legs[0].Available)
	assert.True(t, legs[0].Strike.Equal(decimal.NewFromInt(24850)))
}
