// Command analytics runs the forecasting and inventory calculations against a
// local dataset file and prints the result as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/ingest"
	"github.com/andresuchdata/supplychain-brain/internal/inventory"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.Server.Mode, cfg.Server.LogFormat)

	fileFlag := &cli.StringFlag{Name: "file", Usage: "Dataset CSV/XLSX file", Required: true}
	leadTimeFlag := &cli.Float64Flag{Name: "lead-time", Usage: "Lead time in days", Value: cfg.Session.SimulationLT}
	serviceLevelFlag := &cli.Float64Flag{Name: "service-level", Usage: "Target service level (0,1)", Value: cfg.Session.SimulationSL}

	app := &cli.App{
		Name:  "analytics",
		Usage: "Offline forecast correction and inventory policy calculations",
		Commands: []*cli.Command{
			{
				Name:  "predict",
				Usage: "Bias-correct a forecast for one customer",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{Name: "customer", Required: true},
					&cli.IntFlag{Name: "month", Usage: "Target month 1-12", Required: true},
					&cli.Float64Flag{Name: "forecast", Usage: "User forecast quantity", Required: true},
					&cli.BoolFlag{Name: "seasonal", Value: true},
					&cli.Float64Flag{Name: "confidence", Value: 0.95},
					&cli.BoolFlag{Name: "policy", Usage: "Include the inventory policy"},
					leadTimeFlag,
					serviceLevelFlag,
				},
				Action: func(c *cli.Context) error {
					ds, err := readDataset(c.String("file"))
					if err != nil {
						return err
					}
					seasonal := c.Bool("seasonal")
					res, err := service.NewPlanningService(cfg.Session).Predict(ds, service.PredictRequest{
						CustomerID:      c.String("customer"),
						Month:           c.Int("month"),
						UserForecast:    c.Float64("forecast"),
						UseSeasonal:     &seasonal,
						ConfidenceLevel: c.Float64("confidence"),
						WithPolicy:      c.Bool("policy"),
						LeadTimeDays:    c.Float64("lead-time"),
						ServiceLevel:    c.Float64("service-level"),
					})
					if err != nil {
						return err
					}
					return printJSON(c, res)
				},
			},
			{
				Name:  "policy",
				Usage: "Safety stock and reorder point from daily statistics",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "daily-demand", Required: true},
					&cli.Float64Flag{Name: "daily-std", Required: true},
					&cli.Float64Flag{Name: "review-period", Usage: "Review period in days"},
					leadTimeFlag,
					serviceLevelFlag,
				},
				Action: func(c *cli.Context) error {
					policy, err := inventory.Policy(inventory.PolicyParams{
						DailyDemand:      c.Float64("daily-demand"),
						DailyStdDev:      c.Float64("daily-std"),
						LeadTimeDays:     c.Float64("lead-time"),
						ServiceLevel:     c.Float64("service-level"),
						ReviewPeriodDays: c.Float64("review-period"),
					})
					if err != nil {
						return err
					}
					return printJSON(c, policy)
				},
			},
			{
				Name:  "monthly",
				Usage: "Policy from a monthly demand and its mean absolute error",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "demand", Required: true},
					&cli.Float64Flag{Name: "mae", Required: true},
					&cli.Float64Flag{Name: "days", Value: inventory.DefaultDaysInMonth},
					leadTimeFlag,
					serviceLevelFlag,
				},
				Action: func(c *cli.Context) error {
					policy, err := inventory.MonthlyStrategy(inventory.MonthlyParams{
						MonthlyDemand: c.Float64("demand"),
						MAE:           c.Float64("mae"),
						LeadTimeDays:  c.Float64("lead-time"),
						ServiceLevel:  c.Float64("service-level"),
						DaysInMonth:   c.Float64("days"),
					})
					if err != nil {
						return err
					}
					return printJSON(c, policy)
				},
			},
			{
				Name:  "sandbox",
				Usage: "Service level versus stock cost trade-off",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "unit-cost", Value: 1},
					&cli.Float64Flag{Name: "demand", Value: inventory.DefaultSandboxMonthlyDemand},
					&cli.Float64Flag{Name: "std", Value: inventory.DefaultSandboxMonthlyStdDev},
					leadTimeFlag,
					serviceLevelFlag,
				},
				Action: func(c *cli.Context) error {
					res, err := inventory.Sandbox(inventory.SandboxParams{
						ServiceLevel:  c.Float64("service-level"),
						LeadTimeDays:  c.Float64("lead-time"),
						UnitCost:      c.Float64("unit-cost"),
						MonthlyDemand: c.Float64("demand"),
						MonthlyStdDev: c.Float64("std"),
					})
					if err != nil {
						return err
					}
					return printJSON(c, res)
				},
			},
			{
				Name:  "profile",
				Usage: "Forecast accuracy profile of one customer",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{Name: "customer", Required: true},
					&cli.IntSliceFlag{Name: "year"},
				},
				Action: func(c *cli.Context) error {
					ds, err := readDataset(c.String("file"))
					if err != nil {
						return err
					}
					profile, err := analytics.BuildCustomerProfile(ds.Records, c.String("customer"), c.IntSlice("year"))
					if err != nil {
						return err
					}
					return printJSON(c, profile)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics failed")
	}
}

func readDataset(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ingest.Read(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	logger.Log.Debug().Str("file", path).Int("rows", ds.Len()).Int("skipped", ds.SkippedRows).Msg("dataset loaded")
	return ds, nil
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
