package canonical

import (
	"sort"

	"github.com/khabargraph/backend/pkg/common"
	"github.com/khabargraph/backend/pkg/logger"
)

// Map resolves noisy name variants to their canonical form for one entity
// class (actors or locations). It is built once per run and read-only
// afterwards.
type Map struct {
	class      string
	byVariant  map[string]string
	canonicals []string
	variants   map[string][]string
}

// BuildMap validates a raw canonical-name -> variants mapping and returns a
// resolver for it. Variant strings must be disjoint across canonical keys;
// a variant already claimed by another canonical is logged and dropped, with
// the first claim (in sorted canonical-key order) winning so that
// construction is deterministic regardless of input iteration order.
func BuildMap(class string, raw map[string][]string) *Map {
	m := &Map{
		class:     class,
		byVariant: make(map[string]string),
		variants:  make(map[string][]string, len(raw)),
	}

	keys := make([]string, 0, len(raw))
	for canonical := range raw {
		keys = append(keys, canonical)
	}
	sort.Strings(keys)

	for _, canonical := range keys {
		kept := make([]string, 0, len(raw[canonical]))
		for _, variant := range raw[canonical] {
			if variant == "" {
				continue
			}
			if owner, ok := m.byVariant[variant]; ok {
				if owner != canonical {
					logger.Warn("Dropping ambiguous variant", "class", class, "variant", variant, "kept", owner, "dropped", canonical)
				}
				continue
			}
			m.byVariant[variant] = canonical
			kept = append(kept, variant)
		}
		// canonical names always resolve to themselves
		if _, ok := m.byVariant[canonical]; !ok {
			m.byVariant[canonical] = canonical
		}
		m.canonicals = append(m.canonicals, canonical)
		m.variants[canonical] = kept
	}

	return m
}

// Class returns the entity class this map was built for.
func (m *Map) Class() string {
	return m.class
}

// Canonicals returns the canonical keys in sorted order.
func (m *Map) Canonicals() []string {
	return m.canonicals
}

// Variants returns the variant strings registered for a canonical key.
func (m *Map) Variants(canonical string) []string {
	return m.variants[canonical]
}

// Resolve returns the canonical key owning value, or value unchanged when it
// is unknown. Unresolved names pass through verbatim so they are still
// persisted rather than dropped.
func (m *Map) Resolve(value string) string {
	if m == nil || len(m.byVariant) == 0 {
		return value
	}
	if canonical, ok := m.byVariant[value]; ok {
		return canonical
	}
	return value
}

// ResolveAll resolves every element of values, preserving order.
func (m *Map) ResolveAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = m.Resolve(v)
	}
	return out
}

// ResolveLocations resolves a location field while preserving its shape:
// scalar in, scalar out; list in, list out.
func (m *Map) ResolveLocations(loc common.Locations) common.Locations {
	return common.Locations{
		Values: m.ResolveAll(loc.Values),
		Scalar: loc.Scalar,
	}
}

// CanonicalizeEvents returns a copy of events with actor and location names
// replaced by their canonical forms. The input slice is not modified.
func CanonicalizeEvents(events []common.RawEvent, actors, locations *Map) []common.RawEvent {
	out := make([]common.RawEvent, len(events))
	for i, event := range events {
		event.Actors = actors.ResolveAll(event.Actors)
		event.Location = locations.ResolveLocations(event.Location)
		out[i] = event
	}
	return out
}
