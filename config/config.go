// Package config loads and validates backtest configuration from YAML.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Defaults for the intentionally explicit strategy-tuning parameters. The
// exchange strike step is 50 points; hedges are bought 100..300 points away.
var (
	defaultStrikeStep   = decimal.NewFromInt(50)
	defaultMinTick      = decimal.NewFromFloat(0.05)
	defaultHedgeOffsets = []int64{100, 150, 200, 300}
)

// ClickHouse holds bar feed connection settings.
type ClickHouse struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// Config is the full, explicit input of a run. No defaults are baked into
// the engine itself.
type Config struct {
	Symbol string
	From   time.Time
	To     time.Time

	LotSize          int64
	LotsToTrade      int64
	CommissionPerLot decimal.Decimal
	StrikeStep       decimal.Decimal
	MinTick          decimal.Decimal
	HedgeOffsets     []int64
	IncludeHedgePnL  bool

	Workers int

	HolidayFile string
	ClickHouse  ClickHouse
	OptionsDB   string
	ResultsDB   string
	JournalDir  string
}

// ConfigTmp is the raw YAML shape of Config, also produced by the setup wizard.
type ConfigTmp struct {
	Symbol string `yaml:"symbol"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`

	LotSize          int64   `yaml:"lot_size"`
	LotsToTrade      int64   `yaml:"lots_to_trade"`
	CommissionPerLot string  `yaml:"commission_per_lot"`
	StrikeStep       string  `yaml:"strike_step,omitempty"`
	MinTick          string  `yaml:"min_tick,omitempty"`
	HedgeOffsets     []int64 `yaml:"hedge_offsets,omitempty"`
	IncludeHedgePnL  bool    `yaml:"include_hedge_pnl,omitempty"`

	Workers int `yaml:"workers,omitempty"`

	HolidayFile string     `yaml:"holiday_file"`
	ClickHouse  ClickHouse `yaml:"clickhouse"`
	OptionsDB   string     `yaml:"options_db"`
	ResultsDB   string     `yaml:"results_db"`
	JournalDir  string     `yaml:"journal_dir,omitempty"`
}

// Get reads the config path from the -config flag and loads it.
func Get() (*Config, error) {
	path := flag.String("config", "backtest.yaml", "path to yaml config")
	flag.Parse()
	return Load(*path)
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Symbol:          tmp.Symbol,
		LotSize:         tmp.LotSize,
		LotsToTrade:     tmp.LotsToTrade,
		IncludeHedgePnL: tmp.IncludeHedgePnL,
		Workers:         tmp.Workers,
		HolidayFile:     tmp.HolidayFile,
		ClickHouse:      tmp.ClickHouse,
		OptionsDB:       tmp.OptionsDB,
		ResultsDB:       tmp.ResultsDB,
		JournalDir:      tmp.JournalDir,
		HedgeOffsets:    tmp.HedgeOffsets,
	}

	var err2 error
	if cfg.From, err2 = time.Parse(dateLayout, tmp.From); err2 != nil {
		return nil, fmt.Errorf("incorrect 'from' date %q: %w", tmp.From, err2)
	}
	if cfg.To, err2 = time.Parse(dateLayout, tmp.To); err2 != nil {
		return nil, fmt.Errorf("incorrect 'to' date %q: %w", tmp.To, err2)
	}

	if cfg.CommissionPerLot, err2 = decimal.NewFromString(tmp.CommissionPerLot); err2 != nil {
		return nil, fmt.Errorf("incorrect 'commission_per_lot' param: %w", err2)
	}

	cfg.StrikeStep = defaultStrikeStep
	if tmp.StrikeStep != "" {
		if cfg.StrikeStep, err2 = decimal.NewFromString(tmp.StrikeStep); err2 != nil {
			return nil, fmt.Errorf("incorrect 'strike_step' param: %w", err2)
		}
	}

	cfg.MinTick = defaultMinTick
	if tmp.MinTick != "" {
		if cfg.MinTick, err2 = decimal.NewFromString(tmp.MinTick); err2 != nil {
			return nil, fmt.Errorf("incorrect 'min_tick' param: %w", err2)
		}
	}

	if len(cfg.HedgeOffsets) == 0 {
		cfg.HedgeOffsets = append([]int64(nil), defaultHedgeOffsets...)
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = "./wal"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects a run before any simulation starts. Configuration errors
// abort the whole batch.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("'symbol' is required")
	}
	if !c.To.After(c.From) {
		return fmt.Errorf("'to' (%s) must be after 'from' (%s)",
			c.To.Format(dateLayout), c.From.Format(dateLayout))
	}
	if c.LotSize <= 0 {
		return fmt.Errorf("'lot_size' must be positive, got %d", c.LotSize)
	}
	if c.LotsToTrade <= 0 {
		return fmt.Errorf("'lots_to_trade' must be positive, got %d", c.LotsToTrade)
	}
	if c.CommissionPerLot.IsNegative() {
		return fmt.Errorf("'commission_per_lot' must not be negative, got %s", c.CommissionPerLot.String())
	}
	if c.StrikeStep.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("'strike_step' must be positive, got %s", c.StrikeStep.String())
	}
	if c.MinTick.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("'min_tick' must be positive, got %s", c.MinTick.String())
	}
	for _, o := range c.HedgeOffsets {
		if o <= 0 {
			return fmt.Errorf("hedge offsets must be positive, got %d", o)
		}
	}
	return nil
}
