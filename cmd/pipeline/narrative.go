package main

import (
	"context"
	"time"

	"github.com/khabargraph/backend/internal/pipeline"
	"github.com/khabargraph/backend/internal/queue"
	"github.com/khabargraph/backend/pkg/leaselock"
	"github.com/khabargraph/backend/pkg/logger"
	graphstorage "github.com/khabargraph/backend/pkg/store/pgx"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	narrativeEventsPath    string
	narrativeActorsPath    string
	narrativeLocationsPath string
	narrativeClustersPath  string
)

var narrativeCmd = &cobra.Command{
	Use:   "narrative",
	Short: "Canonicalize, group and persist a corpus of event mentions",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.NewString()

		var input pipeline.NarrativeInput
		if err := readJSONFile(narrativeEventsPath, &input.Events); err != nil {
			return err
		}
		if err := readJSONFile(narrativeClustersPath, &input.Clusters); err != nil {
			return err
		}
		if narrativeActorsPath != "" {
			if err := readJSONFile(narrativeActorsPath, &input.Actors); err != nil {
				return err
			}
		}
		if narrativeLocationsPath != "" {
			if err := readJSONFile(narrativeLocationsPath, &input.Locations); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		logger.Info("Narrative run starting", "run_id", runID, "events", len(input.Events))

		runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(pool))

		var summary pipeline.RunSummary
		locks := leaselock.New(pool)
		err = locks.WithLease(ctx, queue.NarrativeLockKey, 10*time.Minute, func(ctx context.Context) error {
			var runErr error
			summary, runErr = runner.RunNarrative(ctx, input)
			return runErr
		})
		if err != nil {
			return err
		}

		logger.Info("Narrative run done",
			"run_id", runID,
			"dates", summary.Dates,
			"events", summary.EventsPersisted,
			"aliases", summary.AliasesPersisted,
		)
		return nil
	},
}

func init() {
	narrativeCmd.Flags().StringVar(&narrativeEventsPath, "events", "", "JSON file with raw event mentions")
	narrativeCmd.Flags().StringVar(&narrativeActorsPath, "actors", "", "JSON file mapping canonical actors to variants")
	narrativeCmd.Flags().StringVar(&narrativeLocationsPath, "locations", "", "JSON file mapping canonical locations to variants")
	narrativeCmd.Flags().StringVar(&narrativeClustersPath, "clusters", "", "JSON file with per-date merge clusters")
	narrativeCmd.MarkFlagRequired("events")
	narrativeCmd.MarkFlagRequired("clusters")
	rootCmd.AddCommand(narrativeCmd)
}
