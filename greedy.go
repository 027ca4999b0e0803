package layertune

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// unitVector returns v scaled to unit L2 norm. A zero vector stays zero.
func unitVector(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	if n := floats.Norm(out, 2); n > 0 {
		floats.Scale(1/n, out)
	}
	return out
}

// greedyMatch aligns each token with its most similar counterpart. Precision
// averages over candidate tokens, recall over reference tokens, each weighted
// by the token weights. Vectors must already be unit length.
func greedyMatch(cand, ref [][]float64, candW, refW []float64) (p, r, f float64) {
	if len(cand) == 0 || len(ref) == 0 {
		return 0, 0, 0
	}

	rowMax := make([]float64, len(cand))
	colMax := make([]float64, len(ref))
	for i := range rowMax {
		rowMax[i] = math.Inf(-1)
	}
	for j := range colMax {
		colMax[j] = math.Inf(-1)
	}

	for i, c := range cand {
		for j, rv := range ref {
			sim := floats.Dot(c, rv)
			if sim > rowMax[i] {
				rowMax[i] = sim
			}
			if sim > colMax[j] {
				colMax[j] = sim
			}
		}
	}

	p = weightedMean(rowMax, candW)
	r = weightedMean(colMax, refW)
	if p+r != 0 {
		f = 2 * p * r / (p + r)
	}
	return p, r, f
}

func weightedMean(x, w []float64) float64 {
	total := floats.Sum(w)
	if total == 0 {
		return 0
	}
	return floats.Dot(x, w) / total
}
