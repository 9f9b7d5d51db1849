package narrative

import (
	"fmt"
	"sort"

	"github.com/khabargraph/backend/pkg/common"
)

// GroupByDate buckets event mentions by their event date and assigns each
// mention a 1-based local id in arrival order. Mentions without an event
// date cannot be placed on a timeline and are dropped.
//
// Arrival order is the order mentions appear in the input, so two runs over
// the same input produce identical local ids. Buckets are not sorted here;
// callers that need deterministic date order use SortedDates.
func GroupByDate(events []common.RawEvent) map[string][]common.GroupedEvent {
	grouped := make(map[string][]common.GroupedEvent)

	for _, event := range events {
		if event.EventDate == "" {
			continue
		}
		grouped[event.EventDate] = append(grouped[event.EventDate], common.GroupedEvent{
			RawEvent: event,
		})
	}

	for date, bucket := range grouped {
		for i := range bucket {
			bucket[i].ID = fmt.Sprintf("%d", i+1)
		}
		grouped[date] = bucket
	}

	return grouped
}

// SortedDates returns the bucket dates in ascending ISO order.
func SortedDates[T any](buckets map[string][]T) []string {
	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
