package store

import (
	"context"

	"github.com/khabargraph/backend/pkg/canonical"
	"github.com/khabargraph/backend/pkg/common"
)

// GraphStorage persists canonical entities, merged events, triples, and
// their relationships. Every write is idempotent: re-running a whole batch
// after a crash never duplicates rows, because identity lookups are
// get-or-create against database uniqueness constraints.
type GraphStorage interface {
	// GetOrCreateEntity returns the id of the entity with the given name and
	// type, inserting it first if needed. Race-safe under concurrent callers.
	GetOrCreateEntity(ctx context.Context, name, entityType string) (int64, error)

	// GetOrCreateSource returns the id of the source with the given url,
	// inserting it first if needed. Title and published date are only set
	// on insert; an existing row is never rewritten.
	GetOrCreateSource(ctx context.Context, ref common.SourceRef) (int64, error)

	// PersistArticleTriples stores the triples of one article, each in its
	// own transaction. A malformed or rejected triple is rolled back and
	// counted without affecting its siblings; only connectivity failures
	// abort the batch.
	PersistArticleTriples(ctx context.Context, article common.ArticleTriples) (TripleStats, error)

	// PersistMergedEvent stores one merged event with its actor and source
	// links inside a single transaction.
	PersistMergedEvent(ctx context.Context, event common.MergedEvent) (int64, error)

	// PersistActorAliases creates one actor per canonical label and one
	// alias row per variant that differs from the label itself. Returns the
	// number of alias rows written.
	PersistActorAliases(ctx context.Context, actors *canonical.Map) (int, error)

	// ClearCorpus removes all narrative rows in child-before-parent order,
	// preparing a full re-run of persistence.
	ClearCorpus(ctx context.Context) error

	// FetchJoinedRows returns the Source-Event-Actor join for sources
	// published on or after the given ISO date.
	FetchJoinedRows(ctx context.Context, fromDate string) ([]common.JoinedRow, error)
}

// TripleStats reports the outcome of persisting one article's triples.
type TripleStats struct {
	Inserted          int
	SkippedValidation int
	SkippedRejected   int
}

// Add accumulates another article's stats into s.
func (s *TripleStats) Add(other TripleStats) {
	s.Inserted += other.Inserted
	s.SkippedValidation += other.SkippedValidation
	s.SkippedRejected += other.SkippedRejected
}

// Skipped returns the total number of triples that were not persisted.
func (s TripleStats) Skipped() int {
	return s.SkippedValidation + s.SkippedRejected
}
