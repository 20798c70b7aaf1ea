// Package setup provides the terminal wizard that generates a backtest
// configuration file.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/indexalgo/weeklyshort/config"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const generatedFile = "backtest.gen.yaml"

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		symbol        string
		fromStr       string
		toStr         string
		lotSizeStr    string
		lotsStr       string
		commissionStr string
		strikeStep    string
		offsets       []string
		includeHedge  bool
		chAddr        string
		chDatabase    string
		chTable       string
		optionsDB     string
		resultsDB     string
		holidayFile   string
		confirm       bool
	)

	// defaults
	symbol = "NIFTY"
	lotSizeStr = "50"
	lotsStr = "1"
	commissionStr = "40"
	strikeStep = "50"
	offsets = []string{"100", "150", "200", "300"}
	chAddr = "localhost:9000"
	chDatabase = "market"
	chTable = "bars"
	optionsDB = "./options.db"
	resultsDB = "./results.db"
	holidayFile = "./holidays.yaml"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WEEKLYSHORT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Describe the backtest you want to run.\n"))

	fmt.Println(stepStyle.Render("STEP 1: INSTRUMENT & RANGE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Index Symbol").
				Value(&symbol).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("symbol cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("From Date").
				Description("YYYY-MM-DD").
				Value(&fromStr).
				Validate(validateDate),
			huh.NewInput().
				Title("To Date").
				Description("YYYY-MM-DD").
				Value(&toStr).
				Validate(validateDate),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WEEKLYSHORT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: CONTRACT PARAMETERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Lot Size").
				Value(&lotSizeStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Lots To Trade").
				Value(&lotsStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Commission Per Lot").
				Value(&commissionStr).
				Validate(validateDecimal),
			huh.NewSelect[string]().
				Title("Strike Step").
				Description("Strike rounding interval of the exchange").
				Options(
					huh.NewOption("50", "50"),
					huh.NewOption("100", "100"),
				).
				Value(&strikeStep),
			huh.NewMultiSelect[string]().
				Title("Hedge Offsets").
				Description("Points away from the main strike").
				Options(
					huh.NewOption("100", "100"),
					huh.NewOption("150", "150"),
					huh.NewOption("200", "200"),
					huh.NewOption("300", "300"),
				).
				Value(&offsets),
			huh.NewConfirm().
				Title("Include hedge P&L in net result?").
				Value(&includeHedge),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WEEKLYSHORT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: DATA SOURCES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("ClickHouse Address").Value(&chAddr),
			huh.NewInput().Title("ClickHouse Database").Value(&chDatabase),
			huh.NewInput().Title("Bar Table").Value(&chTable),
			huh.NewInput().Title("Options Price DB (SQLite)").Value(&optionsDB),
			huh.NewInput().Title("Results DB (SQLite)").Value(&resultsDB),
			huh.NewInput().Title("Holiday Calendar File").Value(&holidayFile),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WEEKLYSHORT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Symbol: %s\nRange: %s .. %s\nLot size: %s x %s lots\nStrike step: %s\nHedge offsets: %v\n",
		symbol, fromStr, toStr, lotSizeStr, lotsStr, strikeStep, offsets,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	lotSize, _ := strconv.ParseInt(lotSizeStr, 10, 64)
	lots, _ := strconv.ParseInt(lotsStr, 10, 64)
	hedgeOffsets := make([]int64, 0, len(offsets))
	for _, o := range offsets {
		v, _ := strconv.ParseInt(o, 10, 64)
		hedgeOffsets = append(hedgeOffsets, v)
	}

	cfgTmp := config.ConfigTmp{
		Symbol:           symbol,
		From:             fromStr,
		To:               toStr,
		LotSize:          lotSize,
		LotsToTrade:      lots,
		CommissionPerLot: commissionStr,
		StrikeStep:       strikeStep,
		HedgeOffsets:     hedgeOffsets,
		IncludeHedgePnL:  includeHedge,
		HolidayFile:      holidayFile,
		OptionsDB:        optionsDB,
		ResultsDB:        resultsDB,
	}
	cfgTmp.ClickHouse.Addr = chAddr
	cfgTmp.ClickHouse.Database = chDatabase
	cfgTmp.ClickHouse.Table = chTable

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(generatedFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\nConfiguration saved to %s", generatedFile)))
	return nil
}

func validateDate(s string) error {
	_, err := time.Parse("2006-01-02", s)
	return err
}

func validatePositiveInt(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a valid number")
	}
	return nil
}
