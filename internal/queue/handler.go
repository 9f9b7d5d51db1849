package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/khabargraph/backend/internal/pipeline"
	"github.com/khabargraph/backend/pkg/leaselock"
	"github.com/khabargraph/backend/pkg/logger"
	graphstorage "github.com/khabargraph/backend/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NarrativeLockKey serializes full-corpus replaces across workers.
const NarrativeLockKey = "narrative_replace"

var validate = validator.New()

// ProcessNarrativeMessage handles one narrative_queue job.
func ProcessNarrativeMessage(ctx context.Context, conn *pgxpool.Pool, msg string) error {
	data := new(NarrativeJob)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode narrative job: %w", err)
	}
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("invalid narrative job: %w", err)
	}

	logger.Info("[Queue] Narrative job", "run_id", data.RunID, "events", len(data.Events))

	runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(conn))

	var summary pipeline.RunSummary
	locks := leaselock.New(conn)
	err := locks.WithLease(ctx, NarrativeLockKey, 10*time.Minute, func(ctx context.Context) error {
		var runErr error
		summary, runErr = runner.RunNarrative(ctx, pipeline.NarrativeInput{
			Events:    data.Events,
			Actors:    data.Actors,
			Locations: data.Locations,
			Clusters:  data.Clusters,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue] Narrative job done",
		"run_id", data.RunID,
		"dates", summary.Dates,
		"events", summary.EventsPersisted,
		"aliases", summary.AliasesPersisted,
	)
	return nil
}

// ProcessTriplesMessage handles one triples_queue job.
func ProcessTriplesMessage(ctx context.Context, conn *pgxpool.Pool, msg string) error {
	data := new(TriplesJob)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode triples job: %w", err)
	}
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("invalid triples job: %w", err)
	}

	logger.Info("[Queue] Triples job", "run_id", data.RunID, "articles", len(data.Articles))

	runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(conn))
	stats, err := runner.RunTriples(ctx, data.Articles)
	if err != nil {
		return err
	}

	logger.Info("[Queue] Triples job done",
		"run_id", data.RunID,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped(),
	)
	return nil
}

// ProcessExportMessage handles one export_queue job.
func ProcessExportMessage(ctx context.Context, conn *pgxpool.Pool, msg string) error {
	data := new(ExportJob)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode export job: %w", err)
	}
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("invalid export job: %w", err)
	}

	logger.Info("[Queue] Export job", "run_id", data.RunID, "from", data.FromDate)

	out, err := os.Create(data.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer out.Close()

	runner := pipeline.NewRunner(graphstorage.NewGraphDBStorageWithConnection(conn))
	nodes, edges, err := runner.Export(ctx, data.FromDate, out)
	if err != nil {
		return err
	}

	logger.Info("[Queue] Export job done",
		"run_id", data.RunID,
		"path", data.OutputPath,
		"nodes", nodes,
		"edges", edges,
	)
	return nil
}
