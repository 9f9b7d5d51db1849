package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/khabargraph/backend/internal/util"
	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// GetOrCreateEntity returns the id for (name, type), inserting the row on
// first sight. Two concurrent callers can both miss the select and race the
// insert; the uniqueness constraint on (entity_name, type) makes the loser's
// insert a no-op and the follow-up select resolves the winner's id.
func (s *GraphDBStorage) GetOrCreateEntity(ctx context.Context, name, entityType string) (int64, error) {
	return getOrCreateEntity(ctx, s.conn, name, entityType)
}

func getOrCreateEntity(ctx context.Context, db dbtx, name, entityType string) (int64, error) {
	name = util.SanitizePostgresText(name)
	entityType = util.SanitizePostgresText(entityType)
	if name == "" {
		return 0, fmt.Errorf("%w: entity name is empty", store.ErrValidation)
	}
	if entityType == "" {
		return 0, fmt.Errorf("%w: entity type is empty for %q", store.ErrValidation, name)
	}

	var id int64
	err := db.QueryRow(ctx,
		`SELECT entity_id FROM entities WHERE entity_name = $1 AND type = $2`,
		name, entityType,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	err = db.QueryRow(ctx,
		`INSERT INTO entities (entity_name, type) VALUES ($1, $2)
		 ON CONFLICT (entity_name, type) DO NOTHING
		 RETURNING entity_id`,
		name, entityType,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	// lost the insert race; the row exists now
	err = db.QueryRow(ctx,
		`SELECT entity_id FROM entities WHERE entity_name = $1 AND type = $2`,
		name, entityType,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetOrCreateSource returns the id for the source url, inserting the row on
// first sight. Title and published date are written only on insert.
func (s *GraphDBStorage) GetOrCreateSource(ctx context.Context, ref common.SourceRef) (int64, error) {
	return getOrCreateSource(ctx, s.conn, ref)
}

func getOrCreateSource(ctx context.Context, db dbtx, ref common.SourceRef) (int64, error) {
	ref.URL = util.SanitizePostgresText(ref.URL)
	ref.Title = util.SanitizePostgresText(ref.Title)
	if ref.URL == "" {
		return 0, fmt.Errorf("%w: source url is empty", store.ErrValidation)
	}

	var title, published any
	if ref.Title != "" {
		title = ref.Title
	}
	if ref.PublishedDate != "" {
		published = ref.PublishedDate
	}

	var id int64
	err := db.QueryRow(ctx,
		`SELECT source_id FROM sources WHERE url = $1`, ref.URL,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	err = db.QueryRow(ctx,
		`INSERT INTO sources (title, url, published_date) VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO NOTHING
		 RETURNING source_id`,
		title, ref.URL, published,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	err = db.QueryRow(ctx,
		`SELECT source_id FROM sources WHERE url = $1`, ref.URL,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func getOrCreateActor(ctx context.Context, db dbtx, label string) (int64, error) {
	label = util.SanitizePostgresText(label)
	if label == "" {
		return 0, fmt.Errorf("%w: actor label is empty", store.ErrValidation)
	}

	var id int64
	err := db.QueryRow(ctx,
		`SELECT id FROM actors WHERE label = $1`, label,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	err = db.QueryRow(ctx,
		`INSERT INTO actors (label) VALUES ($1)
		 ON CONFLICT (label) DO NOTHING
		 RETURNING id`,
		label,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgxv5.ErrNoRows) {
		return 0, err
	}

	err = db.QueryRow(ctx,
		`SELECT id FROM actors WHERE label = $1`, label,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
