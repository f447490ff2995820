package seatrac

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Ranks returns the sample ranks of the values in x.  Ranks are
// 1-based, and tied values are assigned the mean of the ranks that
// they span.  Missing values must be removed before calling.  The
// input is not modified.
func Ranks(x []float64) []float64 {

	y := make([]float64, len(x))
	copy(y, x)
	inds := make([]int, len(x))
	floats.Argsort(y, inds)

	r := make([]float64, len(x))
	for i := 0; i < len(y); {
		j := i + 1
		for j < len(y) && y[j] == y[i] {
			j++
		}
		// Positions i..j-1 hold a run of equal values.
		v := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			r[inds[k]] = v
		}
		i = j
	}

	return r
}

// TieSum returns the tie correction term for rank statistics, the sum
// of t^3 - t over the groups of tied values in x, where t is the size
// of each group.  It is zero when all values are distinct.
func TieSum(x []float64) float64 {

	y := make([]float64, len(x))
	copy(y, x)
	sort.Float64s(y)

	var s float64
	for i := 0; i < len(y); {
		j := i + 1
		for j < len(y) && y[j] == y[i] {
			j++
		}
		t := float64(j - i)
		s += t*t*t - t
		i = j
	}

	return s
}
