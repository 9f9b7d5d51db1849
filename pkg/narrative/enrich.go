package narrative

import (
	"strings"
	"sync"

	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Enrich expands externally produced merge clusters into merged events
// carrying deduplicated source-article provenance.
//
// Every cluster index is resolved against its date bucket by exact string
// match on the local id; indices that do not resolve contribute no source
// and are skipped. A cluster date with no grouped bucket yields an empty
// slice for that date rather than an error. The transient
// source_event_indices never appear in the output; sources are the only
// durable provenance field.
//
// Date buckets are independent, so enrichment runs them in parallel.
func Enrich(
	grouped map[string][]common.GroupedEvent,
	clusters map[string][]common.Cluster,
) map[string][]common.MergedEvent {
	merged := make(map[string][]common.MergedEvent, len(clusters))
	mutex := sync.Mutex{}

	eg := errgroup.Group{}
	for date, dateClusters := range clusters {
		date, dateClusters := date, dateClusters
		eg.Go(func() error {
			bucket, ok := grouped[date]
			if !ok {
				logger.Warn("No grouped events for cluster date", "date", date)
			}
			events := enrichDate(bucket, dateClusters)

			mutex.Lock()
			merged[date] = events
			mutex.Unlock()
			return nil
		})
	}
	// workers never return errors; Wait only synchronizes
	_ = eg.Wait()

	return merged
}

func enrichDate(bucket []common.GroupedEvent, clusters []common.Cluster) []common.MergedEvent {
	if len(bucket) == 0 {
		return []common.MergedEvent{}
	}

	byID := make(map[string]common.GroupedEvent, len(bucket))
	for _, event := range bucket {
		byID[event.ID] = event
	}

	events := make([]common.MergedEvent, 0, len(clusters))
	for _, cluster := range clusters {
		sources := make([]common.SourceRef, 0, len(cluster.SourceEventIndices))
		seen := make(map[string]struct{}, len(cluster.SourceEventIndices))

		for _, idx := range cluster.SourceEventIndices {
			event, ok := byID[idx]
			if !ok {
				continue
			}
			if _, dup := seen[event.ArticleURL]; dup {
				continue
			}
			seen[event.ArticleURL] = struct{}{}
			sources = append(sources, common.SourceRef{
				Title:         event.Title,
				URL:           event.ArticleURL,
				PublishedDate: TruncateToDate(event.PublishedDate),
			})
		}

		events = append(events, common.MergedEvent{
			Event:   cluster.Event,
			Details: cluster.Details,
			Actors:  dedupeActors(cluster.Actors),
			Sources: sources,
		})
	}

	return events
}

func dedupeActors(actors []string) []string {
	seen := make(map[string]struct{}, len(actors))
	out := make([]string, 0, len(actors))
	for _, actor := range actors {
		if actor == "" {
			continue
		}
		if _, ok := seen[actor]; ok {
			continue
		}
		seen[actor] = struct{}{}
		out = append(out, actor)
	}
	return out
}

// TruncateToDate cuts any time component off a published date, keeping only
// the leading YYYY-MM-DD part. Handles both "2024-01-01 10:30:00" and
// "2024-01-01T10:30:00Z" forms.
func TruncateToDate(published string) string {
	if idx := strings.IndexAny(published, " T"); idx != -1 {
		return published[:idx]
	}
	return published
}
