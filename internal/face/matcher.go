package face

import (
	"fmt"
	"math"
)

// DefaultThreshold is the reference distance cut-off for 128-d face
// descriptors. Deployments override it through configuration.
const DefaultThreshold = 0.6

// Distance returns the euclidean distance between a and b.
func Distance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// IsMatch reports distance(a, b) < threshold. Any comparison error,
// including a dimension mismatch, is a non-match.
func IsMatch(a, b Descriptor, threshold float64) bool {
	_, ok, err := Matcher{Threshold: threshold}.Compare(a, b)
	return err == nil && ok
}

// Matcher binds a threshold so callers do not pass it around.
type Matcher struct {
	Threshold float64
}

func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Compare returns the distance and whether it is strictly below the
// threshold. A NaN distance never matches.
func (m Matcher) Compare(live, enrolled Descriptor) (float64, bool, error) {
	d, err := Distance(live, enrolled)
	if err != nil {
		return 0, false, err
	}
	return d, !math.IsNaN(d) && d < m.Threshold, nil
}
