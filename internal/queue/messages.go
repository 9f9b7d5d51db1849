package queue

import "github.com/khabargraph/backend/pkg/common"

// NarrativeJob asks the worker to run the full narrative persistence path
// for a corpus: canonicalize, group, enrich, replace-and-persist.
type NarrativeJob struct {
	RunID     string                      `json:"run_id" validate:"required"`
	Events    []common.RawEvent           `json:"events" validate:"required"`
	Actors    map[string][]string         `json:"actors"`
	Locations map[string][]string         `json:"locations"`
	Clusters  map[string][]common.Cluster `json:"clusters" validate:"required"`
}

// TriplesJob asks the worker to persist extracted triples per article.
type TriplesJob struct {
	RunID    string                  `json:"run_id" validate:"required"`
	Articles []common.ArticleTriples `json:"articles" validate:"required,min=1"`
}

// ExportJob asks the worker to reconstruct the graph for sources published
// on or after FromDate and write it as GEXF to OutputPath.
type ExportJob struct {
	RunID      string `json:"run_id" validate:"required"`
	FromDate   string `json:"from_date" validate:"required"`
	OutputPath string `json:"output_path" validate:"required"`
}
