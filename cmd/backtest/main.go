// Command backtest runs the weekly options signal backtest over a date range.
//
// Usage:
//
//	backtest --config backtest.yaml
//
// The config names the bar feed (ClickHouse), the option price database
// (SQLite), the holiday calendar file and the trading parameters.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/indexalgo/weeklyshort/config"
	"github.com/indexalgo/weeklyshort/internal/calendar"
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/internal/services/backtest"
	"github.com/indexalgo/weeklyshort/internal/storage/bars"
	"github.com/indexalgo/weeklyshort/internal/storage/journal"
	"github.com/indexalgo/weeklyshort/internal/storage/optionprices"
	"github.com/indexalgo/weeklyshort/internal/storage/results"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	cal, err := calendar.Load(cfg.HolidayFile)
	if err != nil {
		return err
	}

	feed, err := bars.NewFeed(cfg.ClickHouse)
	if err != nil {
		return err
	}
	defer feed.Close()

	store, err := optionprices.NewStore(cfg.OptionsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	tradeJournal, err := journal.NewWALStore(cfg.JournalDir)
	if err != nil {
		return err
	}
	defer tradeJournal.Close()

	engine, err := backtest.New(cfg, feed, store, cal, tradeJournal, logger)
	if err != nil {
		return err
	}

	result, err := engine.Run(context.Background())
	if err != nil {
		return err
	}

	if cfg.ResultsDB != "" {
		recorder, err := results.NewRecorder(cfg.ResultsDB)
		if err != nil {
			return err
		}
		defer recorder.Close()
		if err := recorder.SaveRun(result); err != nil {
			return err
		}
	}

	printSummary(result)
	return nil
}

func printSummary(res domain.BacktestResult) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("run %s  %s .. %s",
		res.RunID, res.From.Format("2006-01-02"), res.To.Format("2006-01-02"))))

	fmt.Println(headerStyle.Render("signal          trades  profit  loss  breakeven  missing  pnl"))

	types := make([]domain.SignalType, 0, len(res.PerSignal))
	for t := range res.PerSignal {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		s := res.PerSignal[t]
		fmt.Println(statsRow(s.Type.String(), s))
	}
	fmt.Println(statsRow("TOTAL", res.Overall))

	if len(res.MissingStrikes) > 0 {
		fmt.Fprintf(os.Stderr, "%d option contracts had no price data; see results db\n", len(res.MissingStrikes))
	}
}

func statsRow(name string, s domain.SignalStats) string {
	pnl := s.TotalPnL.StringFixed(2)
	if s.TotalPnL.IsNegative() {
		pnl = lossStyle.Render(pnl)
	} else {
		pnl = winStyle.Render(pnl)
	}
	return cellStyle.Render(fmt.Sprintf("%-15s %6d  %6d  %4d  %9d  %7d  %s",
		name, s.Trades, s.Profits, s.Losses, s.Breakevens, s.DataMissing, pnl))
}
