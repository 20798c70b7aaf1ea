// Package hedge resolves protective hedge legs at configured strike offsets.
package hedge

import (
	"context"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/strikes"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceStore is the external option price lookup. Absent data is reported
// through the boolean, not an error.
type PriceStore interface {
	PriceAt(ctx context.Context, strike decimal.Decimal, optionType domain.OptionType, expiry time.Time, ts time.Time) (decimal.Decimal, bool, error)
}

// Resolver computes hedge legs for a trade.
type Resolver struct {
	store PriceStore
	log   *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(store PriceStore, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: store, log: log}
}

// Legs resolves one leg per offset. A missing entry or exit price marks the
// leg unavailable; it never fails the trade. Lookup errors are treated the
// same way, since retry policy belongs to the caller of the price store.
func (r *Resolver) Legs(ctx context.Context, mainStrike decimal.Decimal, optionType domain.OptionType,
	expiry time.Time, offsets []int64, entryTime, exitTime time.Time) []domain.HedgeLeg {

	legs := make([]domain.HedgeLeg, 0, len(offsets))
	for _, offset := range offsets {
		strike := strikes.HedgeStrike(mainStrike, optionType, offset)
		leg := domain.HedgeLeg{Offset: offset, Strike: strike}

		entry, entryOK, err := r.store.PriceAt(ctx, strike, optionType, expiry, entryTime)
		if err != nil {
			r.log.Warn("hedge entry lookup failed",
				zap.String("strike", strike.String()), zap.Error(err))
			entryOK = false
		}
		exit, exitOK, err := r.store.PriceAt(ctx, strike, optionType, expiry, exitTime)
		if err != nil {
			r.log.Warn("hedge exit lookup failed",
				zap.String("strike", strike.String()), zap.Error(err))
			exitOK = false
		}

		if entryOK && exitOK {
			leg.EntryPrice = entry
			leg.ExitPrice = exit
			leg.Available = true
		}
		legs = append(legs, leg)
	}
	return legs
}
