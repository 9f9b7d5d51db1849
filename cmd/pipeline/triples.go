package main

import (
	"github.com/khabargraph/backend/internal/pipeline"
	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/logger"
	graphstorage "github.com/khabargraph/backend/pkg/store/pgx"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var triplesArticlesPath string

var triplesCmd = &cobra.Command{
	Use:   "triples",
	Short: "Persist extracted subject-predicate-object triples per article",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.NewString()

		var articles []common.ArticleTriples
		if err := readJSONFile(triplesArticlesPath, &articles); err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		logger.Info("Triples run starting", "run_id", runID, "articles", len(articles))

		runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(pool))
		stats, err := runner.RunTriples(ctx, articles)
		if err != nil {
			return err
		}

		logger.Info("Triples run done",
			"run_id", runID,
			"inserted", stats.Inserted,
			"skipped", stats.Skipped(),
		)
		return nil
	},
}

func init() {
	triplesCmd.Flags().StringVar(&triplesArticlesPath, "articles", "", "JSON file with per-article triples")
	triplesCmd.MarkFlagRequired("articles")
	rootCmd.AddCommand(triplesCmd)
}
