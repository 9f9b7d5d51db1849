package narrative

import (
	"reflect"
	"testing"

	"github.com/khabargraph/backend/pkg/common"
)

func TestGroupByDate(t *testing.T) {
	events := []common.RawEvent{
		{Event: "E1", EventDate: "2024-01-02", ArticleURL: "http://a"},
		{Event: "E2", EventDate: "2024-01-01", ArticleURL: "http://a"},
		{Event: "E3", EventDate: "", ArticleURL: "http://b"},
		{Event: "E4", EventDate: "2024-01-02", ArticleURL: "http://b"},
		{Event: "E5", EventDate: "2024-01-02", ArticleURL: "http://c"},
	}

	grouped := GroupByDate(events)

	if len(grouped) != 2 {
		t.Fatalf("bucket count = %d, want 2", len(grouped))
	}
	if _, ok := grouped[""]; ok {
		t.Error("undated events must be dropped, found empty-date bucket")
	}

	jan2 := grouped["2024-01-02"]
	if len(jan2) != 3 {
		t.Fatalf("2024-01-02 bucket size = %d, want 3", len(jan2))
	}
	for i, want := range []struct{ id, event string }{
		{"1", "E1"},
		{"2", "E4"},
		{"3", "E5"},
	} {
		if jan2[i].ID != want.id || jan2[i].Event != want.event {
			t.Errorf("bucket[%d] = (%s, %s), want (%s, %s)", i, jan2[i].ID, jan2[i].Event, want.id, want.event)
		}
	}

	if grouped["2024-01-01"][0].ID != "1" {
		t.Errorf("local ids are per-bucket, got %s", grouped["2024-01-01"][0].ID)
	}
}

func TestGroupByDateDeterministic(t *testing.T) {
	events := []common.RawEvent{
		{Event: "A", EventDate: "2024-03-01"},
		{Event: "B", EventDate: "2024-03-01"},
		{Event: "C", EventDate: "2024-03-02"},
		{Event: "D", EventDate: "2024-03-01"},
	}

	first := GroupByDate(events)
	for i := 0; i < 20; i++ {
		if again := GroupByDate(events); !reflect.DeepEqual(first, again) {
			t.Fatalf("grouping is not deterministic: %#v vs %#v", first, again)
		}
	}
}

func TestSortedDates(t *testing.T) {
	buckets := map[string][]common.GroupedEvent{
		"2024-02-01": nil,
		"2023-12-31": nil,
		"2024-01-15": nil,
	}
	got := SortedDates(buckets)
	want := []string{"2023-12-31", "2024-01-15", "2024-02-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedDates() = %v, want %v", got, want)
	}
}
