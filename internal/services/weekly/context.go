package weekly

import (
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/shopspring/decimal"
)

// afternoonStartHour splits each trading day into the two 4-hour body
// buckets (morning session before, afternoon session from this hour on).
const afternoonStartHour = 13

var three = decimal.NewFromInt(3)

// ComputeContext derives the WeeklyContext for a week from the immediately
// preceding week's bars. The boolean is false when prev has no bars, in
// which case the week must be skipped entirely.
func ComputeContext(prev *domain.Week, minTick decimal.Decimal) (domain.WeeklyContext, bool) {
	if prev == nil || len(prev.Bars) == 0 {
		return domain.WeeklyContext{}, false
	}

	first := prev.Bars[0]
	ctx := domain.WeeklyContext{
		PrevWeekHigh:  first.High,
		PrevWeekLow:   first.Low,
		PrevWeekClose: prev.LastBar().Close,
	}

	for _, b := range prev.Bars[1:] {
		if b.High.GreaterThan(ctx.PrevWeekHigh) {
			ctx.PrevWeekHigh = b.High
		}
		if b.Low.LessThan(ctx.PrevWeekLow) {
			ctx.PrevWeekLow = b.Low
		}
	}

	ctx.PrevWeek4hMaxBody, ctx.PrevWeek4hMinBody = fourHourBodyExtremes(prev.Bars)

	ctx.ResistanceZoneTop = decimal.Max(ctx.PrevWeekHigh, ctx.PrevWeek4hMaxBody)
	ctx.ResistanceZoneBottom = decimal.Min(ctx.PrevWeekHigh, ctx.PrevWeek4hMaxBody)
	ctx.SupportZoneTop = decimal.Max(ctx.PrevWeekLow, ctx.PrevWeek4hMinBody)
	ctx.SupportZoneBottom = decimal.Min(ctx.PrevWeekLow, ctx.PrevWeek4hMinBody)

	ctx.MarginHigh = decimal.Max(ctx.ResistanceZoneTop.Sub(ctx.ResistanceZoneBottom).Mul(three), minTick)
	ctx.MarginLow = decimal.Max(ctx.SupportZoneTop.Sub(ctx.SupportZoneBottom).Mul(three), minTick)

	ctx.Bias = classifyBias(ctx.PrevWeekClose, ctx.PrevWeek4hMaxBody, ctx.PrevWeek4hMinBody)

	return ctx, true
}

// fourHourBodyExtremes buckets bars into morning/afternoon sessions per day
// and returns the maximum body and minimum body across all buckets.
func fourHourBodyExtremes(bars []domain.WeekBar) (maxBody, minBody decimal.Decimal) {
	type bucket struct {
		high decimal.Decimal
		low  decimal.Decimal
		set  bool
	}
	buckets := make(map[string]*bucket)

	for _, b := range bars {
		key := b.Timestamp.Format("2006-01-02") + "-am"
		if b.Timestamp.Hour() >= afternoonStartHour {
			key = b.Timestamp.Format("2006-01-02") + "-pm"
		}

		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{}
			buckets[key] = bk
		}
		body, bodyMin := b.Body(), b.BodyMin()
		if !bk.set {
			bk.high, bk.low, bk.set = body, bodyMin, true
			continue
		}
		if body.GreaterThan(bk.high) {
			bk.high = body
		}
		if bodyMin.LessThan(bk.low) {
			bk.low = bodyMin
		}
	}

	set := false
	for _, bk := range buckets {
		if !set {
			maxBody, minBody, set = bk.high, bk.low, true
			continue
		}
		if bk.high.GreaterThan(maxBody) {
			maxBody = bk.high
		}
		if bk.low.LessThan(minBody) {
			minBody = bk.low
		}
	}
	return maxBody, minBody
}

// classifyBias picks the side whose 4h body extreme sits closer to the
// previous close. An exact tie is neutral.
func classifyBias(close, maxBody, minBody decimal.Decimal) domain.Bias {
	distToMax := close.Sub(maxBody).Abs()
	distToMin := close.Sub(minBody).Abs()

	switch {
	case distToMax.LessThan(distToMin):
		return domain.BiasBearish
	case distToMin.LessThan(distToMax):
		return domain.BiasBullish
	default:
		return domain.BiasNeutral
	}
}
