package common

import (
	"encoding/json"
	"fmt"
)

// RawEvent is a single event mention extracted from one article. It carries
// the article provenance alongside the extracted fields and is immutable
// after extraction.
type RawEvent struct {
	ArticleURL    string    `json:"article_url"`
	Title         string    `json:"title"`
	PublishedDate string    `json:"published_date"`
	Event         string    `json:"event"`
	Details       string    `json:"details"`
	Actors        []string  `json:"actors"`
	Location      Locations `json:"location"`
	EventDate     string    `json:"event_date"`
	EventTime     string    `json:"event_time,omitempty"`
}

// GroupedEvent is a RawEvent placed in its event-date bucket with a stable
// per-date local id. Local ids are 1-based and assigned in arrival order so
// that merge clusters can reference mentions deterministically.
type GroupedEvent struct {
	RawEvent
	ID string `json:"id"`
}

// Cluster is one externally produced merge decision for a date bucket:
// a merged label and details plus the local ids of the mentions it covers.
// SourceEventIndices is transient metadata and never appears in output.
type Cluster struct {
	Event              string   `json:"event"`
	Details            string   `json:"details"`
	Actors             []string `json:"actors"`
	SourceEventIndices []string `json:"source_event_indices"`
}

// MergedEvent is the deduplicated, provenance-enriched form of one or more
// event mentions judged to describe the same occurrence.
type MergedEvent struct {
	Event   string      `json:"event"`
	Details string      `json:"details"`
	Actors  []string    `json:"actors"`
	Sources []SourceRef `json:"sources"`
}

// SourceRef points a merged event back at one source article. URL is the
// uniqueness key; PublishedDate is date-only.
type SourceRef struct {
	Title         string `json:"title"`
	URL           string `json:"article_url"`
	PublishedDate string `json:"published_date"`
}

// TripleEntity is the subject or object of an extracted triple. Objects may
// arrive as literals, in which case Value is set instead of Name and the
// store coerces the literal into an entity row named by its string form.
type TripleEntity struct {
	Type  string `json:"@type"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Triple is one subject-predicate-object fact extracted from an article.
type Triple struct {
	Subject   TripleEntity `json:"subject"`
	Predicate string       `json:"predicate"`
	Object    TripleEntity `json:"object"`
	Date      string       `json:"_date,omitempty"`
	Time      string       `json:"time,omitempty"`
	Details   string       `json:"details,omitempty"`
}

// ArticleTriples groups the triples extracted from one article together with
// the article metadata that becomes its source row.
type ArticleTriples struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	PublishedDate string   `json:"published_date"`
	Triples       []Triple `json:"entities"`
}

// JoinedRow is one row of the Source-Event-Actor join the exporter consumes.
type JoinedRow struct {
	ActorID       int64
	ActorLabel    string
	EventID       int64
	EventLabel    string
	EventDetails  string
	SourceID      int64
	SourceTitle   string
	SourceURL     string
	PublishedDate string
}

// Locations holds the location field of an event mention, which upstream
// extractors emit either as a single string or as a list of strings. The
// shape is preserved through canonicalization and JSON round-trips: scalar
// in, scalar out.
type Locations struct {
	Values []string
	Scalar bool
}

// NewScalarLocation returns a Locations holding a single scalar value.
func NewScalarLocation(value string) Locations {
	return Locations{Values: []string{value}, Scalar: true}
}

// NewLocationList returns a Locations holding a list of values.
func NewLocationList(values ...string) Locations {
	return Locations{Values: values}
}

func (l *Locations) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		*l = NewScalarLocation(scalar)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = Locations{Values: list}
		return nil
	}

	// null and unexpected shapes collapse to an empty list
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = Locations{}
		return nil
	}
	return fmt.Errorf("location must be a string or a list of strings, got %T", raw)
}

func (l Locations) MarshalJSON() ([]byte, error) {
	if l.Scalar {
		if len(l.Values) == 0 {
			return json.Marshal("")
		}
		return json.Marshal(l.Values[0])
	}
	if l.Values == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.Values)
}
