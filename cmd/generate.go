package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"school-transport-service/app"
	"school-transport-service/config"
)

var (
	generateSchedule string
	generateFrom     string
	generateTo       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate trips for one schedule over a date range",
	RunE:  generateTrips,
}

func init() {
	generateCmd.Flags().StringVar(&generateSchedule, "schedule", "", "schedule id")
	generateCmd.Flags().StringVar(&generateFrom, "from", "", "range start (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&generateTo, "to", "", "range end (YYYY-MM-DD)")
	_ = generateCmd.MarkFlagRequired("schedule")
	_ = generateCmd.MarkFlagRequired("from")
	_ = generateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(generateCmd)
}

func generateTrips(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	from, err := time.Parse("2006-01-02", generateFrom)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	to, err := time.Parse("2006-01-02", generateTo)
	if err != nil {
		return fmt.Errorf("parse to: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	generated, err := svc.Generator.GenerateTripsFromSchedule(context.Background(), generateSchedule, from, to)
	if err != nil {
		return err
	}
	for _, t := range generated {
		fmt.Printf("%s  %s -> %s  route=%s status=%s\n",
			t.ServiceDate.Format("2006-01-02"),
			t.PlannedStart.Format("15:04"),
			t.PlannedEnd.Format("15:04"),
			t.RouteID, t.Status)
	}
	fmt.Printf("%d trips in range\n", len(generated))
	return nil
}
