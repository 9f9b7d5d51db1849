package main

import (
	"fmt"
	"os"

	"github.com/khabargraph/backend/internal/pipeline"
	"github.com/khabargraph/backend/pkg/logger"
	graphstorage "github.com/khabargraph/backend/pkg/store/pgx"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportFromDate   string
	exportOutputPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Reconstruct the persisted graph and write it as GEXF",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.NewString()

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		out, err := os.Create(exportOutputPath)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer out.Close()

		logger.Info("Export starting", "run_id", runID, "from", exportFromDate)

		runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(pool))
		nodes, edges, err := runner.Export(ctx, exportFromDate, out)
		if err != nil {
			return err
		}

		logger.Info("Export done",
			"run_id", runID,
			"path", exportOutputPath,
			"nodes", nodes,
			"edges", edges,
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFromDate, "from", "", "Include sources published on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportOutputPath, "out", "graph.gexf", "Output GEXF path")
	exportCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(exportCmd)
}
