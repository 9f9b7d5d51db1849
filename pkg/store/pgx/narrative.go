package pgx

import (
	"context"

	"github.com/khabargraph/backend/internal/util"
	"github.com/khabargraph/backend/pkg/canonical"
	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/logger"
	"github.com/khabargraph/backend/pkg/narrative"
)

// ClearCorpus deletes all narrative rows so a persistence run can be
// repeated from scratch. Deletion order respects foreign-key ownership:
// association rows first, then their parents. Sources cited by triples
// are kept; the triples path owns those rows.
func (s *GraphDBStorage) ClearCorpus(ctx context.Context) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM event_actors`,
		`DELETE FROM event_sources`,
		`DELETE FROM actor_aliases`,
		`DELETE FROM events`,
		`DELETE FROM sources WHERE source_id NOT IN (SELECT source_id FROM triples)`,
		`DELETE FROM actors`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// PersistMergedEvent stores one merged event and links it to its sources and
// actors inside a single transaction. Sources and actors are get-or-create,
// so events citing the same article or actor share one row.
func (s *GraphDBStorage) PersistMergedEvent(ctx context.Context, event common.MergedEvent) (int64, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var eventID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO events (label, details) VALUES ($1, $2) RETURNING id`,
		util.SanitizePostgresText(event.Event), util.SanitizePostgresText(event.Details),
	).Scan(&eventID)
	if err != nil {
		return 0, err
	}

	for _, ref := range event.Sources {
		ref.PublishedDate = narrative.TruncateToDate(ref.PublishedDate)
		sourceID, err := getOrCreateSource(ctx, tx, ref)
		if err != nil {
			return 0, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO event_sources (event_id, source_id) VALUES ($1, $2)`,
			eventID, sourceID,
		)
		if err != nil {
			return 0, err
		}
	}

	for _, actor := range event.Actors {
		actorID, err := getOrCreateActor(ctx, tx, actor)
		if err != nil {
			return 0, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO event_actors (event_id, actor_id) VALUES ($1, $2)`,
			eventID, actorID,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return eventID, nil
}

// PersistActorAliases creates one actor per canonical label and one alias
// row per variant. The canonical label itself is never stored as an alias.
func (s *GraphDBStorage) PersistActorAliases(ctx context.Context, actors *canonical.Map) (int, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	aliasCount := 0
	for _, label := range actors.Canonicals() {
		actorID, err := getOrCreateActor(ctx, tx, label)
		if err != nil {
			return 0, err
		}
		for _, alias := range actors.Variants(label) {
			if alias == label {
				continue
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO actor_aliases (actor_id, alias) VALUES ($1, $2)`,
				actorID, util.SanitizePostgresText(alias),
			)
			if err != nil {
				return 0, err
			}
			aliasCount++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	logger.Debug("Persisted actor aliases", "actors", len(actors.Canonicals()), "aliases", aliasCount)
	return aliasCount, nil
}
