// Package facets counts facet values over query-matched cases. Each
// dimension is counted under every other active filter but not its
// own, so selecting a court still shows the counts for the other
// courts. Counts are cached briefly and the cache drops whenever a new
// index snapshot is swapped in.
package facets

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
)

// MaxFacetValues caps the buckets returned per dimension.
const MaxFacetValues = 10

const (
	cacheSize = 256
	cacheTTL  = 5 * time.Minute
)

// Counter computes facet counts against the active snapshot.
type Counter struct {
	cache *expirable.LRU[string, map[domain.FacetType][]domain.FacetValue]
}

// NewCounter creates a counter and hooks snapshot swaps so stale
// counts never outlive the snapshot they were computed from.
func NewCounter(holder *index.Holder) *Counter {
	c := &Counter{
		cache: expirable.NewLRU[string, map[domain.FacetType][]domain.FacetValue](cacheSize, nil, cacheTTL),
	}
	holder.OnSwap(func(*index.Snapshot) {
		c.cache.Purge()
		logger.Debug("facet cache purged on snapshot swap")
	})
	return c
}

// Count returns facet buckets for every dimension. base is the set of
// case IDs the query matched before filtering; for each dimension the
// remaining filters are applied to it, minus that dimension's own.
func (c *Counter) Count(snap *index.Snapshot, queryKey string, base []int64, filters domain.Filters) map[domain.FacetType][]domain.FacetValue {
	if snap.Empty() {
		return nil
	}

	key := cacheKey(snap.Version, queryKey, filters)
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	baseSet := make(map[int64]struct{}, len(base))
	for _, id := range base {
		baseSet[id] = struct{}{}
	}

	out := make(map[domain.FacetType][]domain.FacetValue, len(domain.AllFacetTypes))
	for _, dim := range domain.AllFacetTypes {
		allowed := filters.Without(dim)
		counts := make(map[string]int)
		for _, term := range snap.FacetTerms[dim] {
			if _, ok := baseSet[term.CaseID]; !ok {
				continue
			}
			meta := snap.Metadata(term.CaseID)
			if meta == nil || !meta.MatchesFilters(allowed) {
				continue
			}
			counts[term.Value]++
		}
		if len(counts) > 0 {
			out[dim] = topValues(counts)
		}
	}

	c.cache.Add(key, out)
	return out
}

// topValues orders buckets by count descending, then value ascending,
// and keeps the largest MaxFacetValues.
func topValues(counts map[string]int) []domain.FacetValue {
	values := make([]domain.FacetValue, 0, len(counts))
	for v, n := range counts {
		values = append(values, domain.FacetValue{Value: v, Count: n})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > MaxFacetValues {
		values = values[:MaxFacetValues]
	}
	return values
}

func cacheKey(version int64, queryKey string, f domain.Filters) string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s|%d|%d",
		version, queryKey, f.Court, f.Status, f.Judge, f.CaseType,
		f.Section, f.Citation, f.YearFrom, f.YearTo)
}
