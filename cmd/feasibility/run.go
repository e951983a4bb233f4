package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/feasibility/feasibility"
)

type requestFlags struct {
	operation string
	grid      string
	start     string
	duration  int
	unit      string
	vehicle   string
	personnel int
	supplies  []string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.operation, "operation", "", "Operation name")
	cmd.Flags().StringVar(&f.grid, "grid", "", "Grid reference of the area of operations")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time, RFC3339")
	cmd.Flags().IntVar(&f.duration, "duration", 24, "Duration in hours")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Owning unit")
	cmd.Flags().StringVar(&f.vehicle, "vehicle", "", "Vehicle type to check")
	cmd.Flags().IntVar(&f.personnel, "personnel", 0, "Personnel count; enables sustainment projection")
	cmd.Flags().StringSliceVar(&f.supplies, "supply", nil, "Supply classes to check (repeatable)")
}

func (f *requestFlags) request() (feasibility.Request, error) {
	req := feasibility.Request{
		OperationName:  f.operation,
		GridReference:  f.grid,
		DurationHours:  f.duration,
		Unit:           f.unit,
		VehicleType:    f.vehicle,
		PersonnelCount: f.personnel,
		Supplies:       f.supplies,
	}
	if f.start != "" {
		t, err := time.Parse(time.RFC3339, f.start)
		if err != nil {
			return req, fmt.Errorf("invalid --start: %w", err)
		}
		req.StartTime = t
	}
	return req, nil
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		fixturesFile string
		asJSON       bool
		flags        requestFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Gather provider assessments and decide",
		Long:  "Fan out to the providers defined in a fixtures file through the event bus, then evaluate the assembled bundle.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			fixtures, err := loadFixtures(fixturesFile)
			if err != nil {
				return err
			}

			req, err := flags.request()
			if err != nil {
				return err
			}

			svc, err := feasibility.New(cfg, feasibility.WithLogger(root.logger))
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			if err := fixtures.register(svc.Registry()); err != nil {
				return fmt.Errorf("failed to register providers: %w", err)
			}

			res, err := svc.Assess(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("assessment failed: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			renderResult(cmd.OutOrStdout(), res)
			renderStats(cmd.OutOrStdout(), svc.Stats())
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturesFile, "fixtures", "", "Path to provider fixtures YAML (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the result as JSON")
	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("fixtures")
	return cmd
}
