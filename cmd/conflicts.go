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
	conflictsVehicle string
	conflictsFrom    string
	conflictsTo      string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Report overlapping assignments for a vehicle",
	RunE:  reportConflicts,
}

func init() {
	conflictsCmd.Flags().StringVar(&conflictsVehicle, "vehicle", "", "vehicle id")
	conflictsCmd.Flags().StringVar(&conflictsFrom, "from", "", "range start (YYYY-MM-DD)")
	conflictsCmd.Flags().StringVar(&conflictsTo, "to", "", "range end (YYYY-MM-DD)")
	_ = conflictsCmd.MarkFlagRequired("vehicle")
	_ = conflictsCmd.MarkFlagRequired("from")
	_ = conflictsCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(conflictsCmd)
}

func reportConflicts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	from, err := time.Parse("2006-01-02", conflictsFrom)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	to, err := time.Parse("2006-01-02", conflictsTo)
	if err != nil {
		return fmt.Errorf("parse to: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	conflicts, err := svc.Assignments.DetectConflicts(context.Background(), conflictsVehicle, from, to.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	for _, c := range conflicts {
		end := "open"
		if c.OverlapEnd != nil {
			end = c.OverlapEnd.Format(time.RFC3339)
		}
		fmt.Printf("%s x %s  overlap %s..%s  trips=%d students=%d severity=%.2f\n",
			c.First.ID, c.Second.ID, c.OverlapStart.Format(time.RFC3339), end,
			c.TripCount, c.StudentCount, c.Severity)
	}
	fmt.Printf("%d conflicts\n", len(conflicts))
	return nil
}
