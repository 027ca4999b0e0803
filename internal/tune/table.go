package tune

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// AvgPair is the pair name of the aggregate row.
const AvgPair = "avg"

// Key addresses one cell of a Table.
type Key struct {
	Pair  string
	Layer int
}

// Table holds per-pair, per-layer correlations for a single column.
type Table struct {
	Column string
	cells  map[Key]float64
	pairs  []string
}

// NewTable returns an empty table whose column is named "<model> F".
func NewTable(model string) *Table {
	return &Table{
		Column: model + " F",
		cells:  make(map[Key]float64),
	}
}

// Set stores v at (pair, layer).
func (t *Table) Set(pair string, layer int, v float64) {
	if !t.hasPair(pair) {
		t.pairs = append(t.pairs, pair)
	}
	t.cells[Key{Pair: pair, Layer: layer}] = v
}

// Get returns the value at (pair, layer).
func (t *Table) Get(pair string, layer int) (float64, bool) {
	v, ok := t.cells[Key{Pair: pair, Layer: layer}]
	return v, ok
}

// Layers returns the number of consecutive layers stored for pair,
// counting from 0.
func (t *Table) Layers(pair string) int {
	n := 0
	for {
		if _, ok := t.cells[Key{Pair: pair, Layer: n}]; !ok {
			return n
		}
		n++
	}
}

// Pairs returns the pairs in insertion order, including AvgPair once set.
func (t *Table) Pairs() []string {
	return append([]string(nil), t.pairs...)
}

func (t *Table) hasPair(pair string) bool {
	for _, p := range t.pairs {
		if p == pair {
			return true
		}
	}
	return false
}

// Average fills the AvgPair row with the mean across pairs for each layer,
// walking from layer 0 until the first layer missing for pairs[0]. If another
// pair has a different layer count the average stops at the shortest pair and
// a *LayerMismatchError is returned alongside the row.
func (t *Table) Average(pairs []string) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	n := t.Layers(pairs[0])
	var mismatch *LayerMismatchError
	for _, p := range pairs[1:] {
		got := t.Layers(p)
		if got == n {
			continue
		}
		if mismatch == nil {
			mismatch = &LayerMismatchError{Reference: pairs[0], Want: n, Pair: p, Got: got}
		}
		if got < n {
			n = got
		}
	}

	avg := make([]float64, n)
	vals := make([]float64, len(pairs))
	for layer := range n {
		for i, p := range pairs {
			vals[i], _ = t.Get(p, layer)
		}
		avg[layer] = stat.Mean(vals, nil)
		t.Set(AvgPair, layer, avg[layer])
	}

	if mismatch != nil {
		return avg, mismatch
	}
	return avg, nil
}

// WriteCSV writes one "pair,layer,<column>" row per cell, pairs in insertion
// order and layers ascending.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pair", "layer", t.Column}); err != nil {
		return err
	}
	for _, p := range t.pairs {
		for layer := range t.Layers(p) {
			v, _ := t.Get(p, layer)
			if err := cw.Write([]string{p, strconv.Itoa(layer), formatFloat(v)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
