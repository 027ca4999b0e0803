package layertune

import "math"

// idfTable maps token IDs to inverse document frequency weights.
type idfTable struct {
	weights map[int32]float64
	unseen  float64
}

// fitIDF computes idf(t) = ln((M+1)/(df(t)+1)) over M tokenized documents.
// Tokens never seen get ln(M+1).
func fitIDF(docs [][]int32) *idfTable {
	df := make(map[int32]int)
	for _, doc := range docs {
		seen := make(map[int32]struct{}, len(doc))
		for _, id := range doc {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			df[id]++
		}
	}

	m := float64(len(docs))
	t := &idfTable{
		weights: make(map[int32]float64, len(df)),
		unseen:  math.Log(m + 1),
	}
	for id, n := range df {
		t.weights[id] = math.Log((m + 1) / (float64(n) + 1))
	}
	return t
}

// weight returns the weight for id; a nil table weights every token 1.
func (t *idfTable) weight(id int32) float64 {
	if t == nil {
		return 1
	}
	if w, ok := t.weights[id]; ok {
		return w
	}
	return t.unseen
}
