package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/khabargraph/backend/internal/util"
	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/logger"
	"github.com/khabargraph/backend/pkg/store"

	"github.com/jackc/pgx/v5/pgconn"
)

// PersistArticleTriples stores every triple of one article, each inside its
// own transaction covering source, subject, and object resolution plus the
// triple row itself. One bad record rolls back only its own transaction;
// committed siblings stay committed and no partial row is left visible.
func (s *GraphDBStorage) PersistArticleTriples(
	ctx context.Context,
	article common.ArticleTriples,
) (store.TripleStats, error) {
	stats := store.TripleStats{}

	sourceRef := common.SourceRef{
		Title:         article.Title,
		URL:           article.URL,
		PublishedDate: article.PublishedDate,
	}
	if sourceRef.URL == "" {
		return stats, fmt.Errorf("%w: article has no url", store.ErrValidation)
	}

	for i, triple := range article.Triples {
		if err := validateTriple(triple); err != nil {
			logger.Warn("Skipping invalid triple", "url", article.URL, "index", i, "err", err)
			stats.SkippedValidation++
			continue
		}

		err := s.persistTriple(ctx, sourceRef, triple)
		if err == nil {
			stats.Inserted++
			continue
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) || errors.Is(err, store.ErrValidation) {
			// rejected by the database or by resolution, roll back this
			// triple only and keep going
			logger.Warn("Skipping rejected triple", "url", article.URL, "index", i, "err", err)
			stats.SkippedRejected++
			continue
		}

		return stats, fmt.Errorf("%w: persisting triple %d of %s: %w", store.ErrConnectivity, i, article.URL, err)
	}

	return stats, nil
}

func (s *GraphDBStorage) persistTriple(
	ctx context.Context,
	sourceRef common.SourceRef,
	triple common.Triple,
) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sourceID, err := getOrCreateSource(ctx, tx, sourceRef)
	if err != nil {
		return err
	}

	subjectID, err := getOrCreateEntity(ctx, tx, triple.Subject.Name, triple.Subject.Type)
	if err != nil {
		return err
	}

	objectID, err := getOrCreateEntity(ctx, tx, objectName(triple.Object), triple.Object.Type)
	if err != nil {
		return err
	}

	var date, details any
	if triple.Date != "" {
		date = util.SanitizePostgresText(triple.Date)
	}
	if triple.Details != "" {
		details = util.SanitizePostgresText(triple.Details)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO triples (subject_id, predicate, object_id, date, details, source_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		subjectID, util.SanitizePostgresText(triple.Predicate), objectID, date, details, sourceID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func validateTriple(triple common.Triple) error {
	if triple.Subject.Name == "" {
		return fmt.Errorf("%w: subject has no name", store.ErrValidation)
	}
	if triple.Subject.Type == "" {
		return fmt.Errorf("%w: subject has no type", store.ErrValidation)
	}
	if triple.Predicate == "" {
		return fmt.Errorf("%w: predicate is empty", store.ErrValidation)
	}
	if triple.Object.Type == "" {
		return fmt.Errorf("%w: object has no type", store.ErrValidation)
	}
	if objectName(triple.Object) == "" {
		return fmt.Errorf("%w: object has neither name nor value", store.ErrValidation)
	}
	return nil
}

// objectName coerces a literal object into an entity name: the declared name
// when present, otherwise the string form of the literal value.
func objectName(object common.TripleEntity) string {
	if object.Name != "" {
		return object.Name
	}
	if object.Value == nil {
		return ""
	}
	return fmt.Sprintf("%v", object.Value)
}
