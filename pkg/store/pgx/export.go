package pgx

import (
	"context"

	"github.com/khabargraph/backend/pkg/common"
)

const joinedRowsSQL = `
SELECT
    a.id AS actor_id, a.label AS actor_label,
    e.id AS event_id, e.label AS event_label, COALESCE(e.details, '') AS event_details,
    s.source_id, COALESCE(s.title, '') AS source_title, s.url AS source_url, s.published_date::text
FROM sources s
JOIN event_sources es ON s.source_id = es.source_id
JOIN events e ON es.event_id = e.id
JOIN event_actors ea ON e.id = ea.event_id
JOIN actors a ON ea.actor_id = a.id
WHERE s.published_date >= $1
`

// FetchJoinedRows returns the Source-Event-Actor join used to reconstruct
// the export graph, restricted to sources published on or after fromDate.
func (s *GraphDBStorage) FetchJoinedRows(ctx context.Context, fromDate string) ([]common.JoinedRow, error) {
	rows, err := s.conn.Query(ctx, joinedRowsSQL, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	joined := make([]common.JoinedRow, 0)
	for rows.Next() {
		var row common.JoinedRow
		err := rows.Scan(
			&row.ActorID, &row.ActorLabel,
			&row.EventID, &row.EventLabel, &row.EventDetails,
			&row.SourceID, &row.SourceTitle, &row.SourceURL, &row.PublishedDate,
		)
		if err != nil {
			return nil, err
		}
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return joined, nil
}
