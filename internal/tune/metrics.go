package tune

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the Pearson correlation of x and y. It is NaN when either
// input is constant, shorter than two values, or the lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// LayerMismatchError reports a language pair whose layer count differs from
// the first pair's.
type LayerMismatchError struct {
	Reference string
	Want      int
	Pair      string
	Got       int
}

func (e *LayerMismatchError) Error() string {
	return fmt.Sprintf("layer count mismatch: %s has %d layers, %s has %d",
		e.Reference, e.Want, e.Pair, e.Got)
}

// BestLayer returns the index and value of the largest average correlation.
// The search starts from (0, 0.0) and only moves on a strict improvement, so
// ties keep the lower layer and NaN is never chosen.
func BestLayer(avg []float64) (int, float64) {
	best, bestCorr := 0, 0.0
	for layer, corr := range avg {
		if corr > bestCorr {
			best, bestCorr = layer, corr
		}
	}
	return best, bestCorr
}
