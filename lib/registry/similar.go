package registry

import (
	"slices"

	"github.com/antzucaro/matchr"
)

// DefaultSimilarThreshold is the Jaro-Winkler correlation above which
// two names are reported as a likely retitle.
const DefaultSimilarThreshold = 0.93

// SimilarPair is two registry names close enough that they are likely
// the same product under a retitled listing.
type SimilarPair struct {
	Left        string
	Right       string
	Correlation float64
}

// SimilarPairs reports name pairs whose Jaro-Winkler correlation meets
// the threshold, highest first. Retailers retitle listings over time
// and every retitle looks like a brand new model to the diff, this is
// the audit for that.
func SimilarPairs(names []string, threshold float64) []SimilarPair {
	sorted := slices.Clone(names)
	slices.Sort(sorted)

	var result []SimilarPair
	for i, left := range sorted {
		for _, right := range sorted[i+1:] {
			correlation := matchr.JaroWinkler(left, right, false)
			if correlation < threshold {
				continue
			}
			result = append(result, SimilarPair{
				Left:        left,
				Right:       right,
				Correlation: correlation,
			})
		}
	}

	slices.SortFunc(result, func(a, b SimilarPair) int {
		if a.Correlation > b.Correlation {
			return -1
		}
		if a.Correlation < b.Correlation {
			return 1
		}
		return 0
	})
	return result
}
