package seatrac

import (
	"math"
	"sort"
)

// BenjaminiHochberg returns Benjamini-Hochberg adjusted p-values,
// controlling the false discovery rate across the whole input batch.
// NaN entries denote tests that produced no p-value; they are excluded
// from the family size and remain NaN in the output.  The input is not
// modified.
func BenjaminiHochberg(p []float64) []float64 {

	idx := make([]int, 0, len(p))
	for i, v := range p {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(i, j int) bool { return p[idx[i]] < p[idx[j]] })

	adj := make([]float64, len(p))
	for i := range adj {
		adj[i] = math.NaN()
	}

	// Walk from the largest p-value down, keeping the adjusted
	// values monotone and capped at 1.
	m := float64(len(idx))
	minP := 1.0
	for k := len(idx) - 1; k >= 0; k-- {
		v := p[idx[k]] * m / float64(k+1)
		if v < minP {
			minP = v
		}
		adj[idx[k]] = minP
	}

	return adj
}
