package narrative

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/khabargraph/backend/pkg/common"
)

func groupedFixture() map[string][]common.GroupedEvent {
	return map[string][]common.GroupedEvent{
		"2024-01-01": {
			{
				RawEvent: common.RawEvent{
					ArticleURL:    "http://x",
					Title:         "T1",
					PublishedDate: "2024-01-01 08:00:00",
					Event:         "E1",
					Details:       "D1",
					Actors:        []string{"A"},
				},
				ID: "1",
			},
			{
				RawEvent: common.RawEvent{
					ArticleURL:    "http://y",
					Title:         "T2",
					PublishedDate: "2024-01-01",
					Event:         "E2",
					Details:       "D2",
					Actors:        []string{"B"},
				},
				ID: "2",
			},
			{
				RawEvent: common.RawEvent{
					ArticleURL:    "http://x",
					Title:         "T1",
					PublishedDate: "2024-01-01",
					Event:         "E3",
					Details:       "D3",
					Actors:        []string{"A"},
				},
				ID: "3",
			},
		},
	}
}

func TestEnrich(t *testing.T) {
	clusters := map[string][]common.Cluster{
		"2024-01-01": {
			{
				Event:              "Merged E1+E3",
				Details:            "merged details",
				Actors:             []string{"A", "B", "A"},
				SourceEventIndices: []string{"1", "3", "2"},
			},
		},
	}

	merged := Enrich(groupedFixture(), clusters)

	events := merged["2024-01-01"]
	if len(events) != 1 {
		t.Fatalf("merged event count = %d, want 1", len(events))
	}
	event := events[0]

	// url http://x appears twice in the indices but yields one source,
	// in first-appearance order
	wantSources := []common.SourceRef{
		{Title: "T1", URL: "http://x", PublishedDate: "2024-01-01"},
		{Title: "T2", URL: "http://y", PublishedDate: "2024-01-01"},
	}
	if !reflect.DeepEqual(event.Sources, wantSources) {
		t.Errorf("sources = %+v, want %+v", event.Sources, wantSources)
	}

	if !reflect.DeepEqual(event.Actors, []string{"A", "B"}) {
		t.Errorf("actors = %v, want deduplicated [A B]", event.Actors)
	}
}

func TestEnrichDropsSourceEventIndices(t *testing.T) {
	clusters := map[string][]common.Cluster{
		"2024-01-01": {
			{Event: "E", Details: "D", Actors: []string{"A"}, SourceEventIndices: []string{"1"}},
		},
	}

	merged := Enrich(groupedFixture(), clusters)

	raw, err := json.Marshal(merged)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "source_event_indices") {
		t.Errorf("output retains source_event_indices: %s", raw)
	}
	if !strings.Contains(string(raw), "sources") {
		t.Errorf("output missing sources: %s", raw)
	}
}

func TestEnrichUnresolvableIndex(t *testing.T) {
	clusters := map[string][]common.Cluster{
		"2024-01-01": {
			{Event: "E", Details: "D", SourceEventIndices: []string{"1", "99"}},
		},
	}

	merged := Enrich(groupedFixture(), clusters)

	sources := merged["2024-01-01"][0].Sources
	if len(sources) != 1 || sources[0].URL != "http://x" {
		t.Errorf("unresolvable index must be skipped silently, sources = %+v", sources)
	}
}

func TestEnrichMissingDateBucket(t *testing.T) {
	clusters := map[string][]common.Cluster{
		"1999-01-01": {
			{Event: "E", Details: "D", SourceEventIndices: []string{"1"}},
		},
	}

	merged := Enrich(groupedFixture(), clusters)

	events, ok := merged["1999-01-01"]
	if !ok {
		t.Fatal("missing date bucket must still yield an entry")
	}
	if len(events) != 0 {
		t.Errorf("missing date bucket must yield empty sequence, got %+v", events)
	}
}

func TestTruncateToDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "space separated", in: "2024-01-01 10:30:00", want: "2024-01-01"},
		{name: "iso T separated", in: "2024-01-01T10:30:00Z", want: "2024-01-01"},
		{name: "date only", in: "2024-01-01", want: "2024-01-01"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateToDate(tt.in); got != tt.want {
				t.Errorf("TruncateToDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
