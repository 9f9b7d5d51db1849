package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/khabargraph/backend/pkg/canonical"
	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/graph"
	"github.com/khabargraph/backend/pkg/logger"
	"github.com/khabargraph/backend/pkg/narrative"
	"github.com/khabargraph/backend/pkg/store"
)

// Runner wires the pipeline stages together: canonicalize, group, enrich,
// persist, export. The storage handle is passed in, never held globally.
type Runner struct {
	storage store.GraphStorage
}

// NewRunner creates a Runner on top of the given storage.
func NewRunner(storage store.GraphStorage) *Runner {
	return &Runner{storage: storage}
}

// RunSummary reports what a narrative persistence run did. Per-record skips
// never abort a run; they are counted here instead.
type RunSummary struct {
	Dates            int
	EventsPersisted  int
	AliasesPersisted int
	Triples          store.TripleStats
}

// NarrativeInput bundles everything a narrative run consumes: the raw event
// mentions, the externally produced canonical maps, and the externally
// produced merge clusters.
type NarrativeInput struct {
	Events    []common.RawEvent
	Actors    map[string][]string
	Locations map[string][]string
	Clusters  map[string][]common.Cluster
}

// RunNarrative executes the full narrative path: canonicalization, grouping,
// enrichment, then a full-corpus replace of the persisted narrative. The
// whole run is safe to repeat after a crash.
func (r *Runner) RunNarrative(ctx context.Context, input NarrativeInput) (RunSummary, error) {
	summary := RunSummary{}

	actorMap := canonical.BuildMap("actor", input.Actors)
	locationMap := canonical.BuildMap("location", input.Locations)

	events := canonical.CanonicalizeEvents(input.Events, actorMap, locationMap)
	grouped := narrative.GroupByDate(events)
	merged := narrative.Enrich(grouped, input.Clusters)

	logger.Info("Narrative built", "raw_events", len(input.Events), "dates", len(merged))

	if err := r.storage.ClearCorpus(ctx); err != nil {
		return summary, fmt.Errorf("%w: clearing corpus: %w", store.ErrConnectivity, err)
	}

	aliases, err := r.storage.PersistActorAliases(ctx, actorMap)
	if err != nil {
		return summary, fmt.Errorf("%w: persisting actor aliases: %w", store.ErrConnectivity, err)
	}
	summary.AliasesPersisted = aliases

	for _, date := range narrative.SortedDates(merged) {
		for _, event := range merged[date] {
			if _, err := r.storage.PersistMergedEvent(ctx, event); err != nil {
				return summary, fmt.Errorf("%w: persisting event %q on %s: %w", store.ErrConnectivity, event.Event, date, err)
			}
			summary.EventsPersisted++
		}
		summary.Dates++
	}

	logger.Info("Narrative persisted",
		"dates", summary.Dates,
		"events", summary.EventsPersisted,
		"aliases", summary.AliasesPersisted,
	)
	return summary, nil
}

// RunTriples persists the triples of every article. Invalid or rejected
// records are skipped and counted; only connectivity failures abort.
func (r *Runner) RunTriples(ctx context.Context, articles []common.ArticleTriples) (store.TripleStats, error) {
	stats := store.TripleStats{}

	for _, article := range articles {
		articleStats, err := r.storage.PersistArticleTriples(ctx, article)
		stats.Add(articleStats)
		if err != nil {
			if errors.Is(err, store.ErrValidation) {
				logger.Warn("Skipping article", "url", article.URL, "err", err)
				stats.SkippedValidation += len(article.Triples)
				continue
			}
			return stats, err
		}
	}

	logger.Info("Triples persisted",
		"articles", len(articles),
		"inserted", stats.Inserted,
		"skipped_validation", stats.SkippedValidation,
		"skipped_rejected", stats.SkippedRejected,
	)
	return stats, nil
}

// Export reconstructs the persisted narrative as a directed graph and
// serializes it as GEXF. Returns the node and edge counts.
func (r *Runner) Export(ctx context.Context, fromDate string, w io.Writer) (int, int, error) {
	rows, err := r.storage.FetchJoinedRows(ctx, fromDate)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fetching joined rows: %w", store.ErrConnectivity, err)
	}

	g := graph.BuildGraph(rows)
	if err := graph.ExportGraph(g, w); err != nil {
		return 0, 0, err
	}

	logger.Info("Graph exported", "rows", len(rows), "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g.NodeCount(), g.EdgeCount(), nil
}
