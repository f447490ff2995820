package groupdiff

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
)

// GroupStats summarizes the observations of one comparison group.
type GroupStats struct {
	Level  string
	N      int
	Mean   float64
	Median float64
	SD     float64
	Min    float64
	Max    float64
}

// Ratio is a ratio statistic with an explicit marker for division by
// a zero denominator, which leaves the ratio undefined.
type Ratio struct {
	Value   float64
	Defined bool
}

// Comparison holds the two group comparison of one variable.  When
// Status is NotComputed every statistic is NaN and Reason states why;
// the group sizes are reported either way.
type Comparison struct {
	Key string

	Status seatrac.Status
	Reason seatrac.Reason

	A, B GroupStats

	// Differences and ratios are group A relative to group B.
	MeanDiff    float64
	MedianDiff  float64
	MeanRatio   Ratio
	MedianRatio Ratio

	// Mann-Whitney U statistic and its two sided p-value.
	U float64
	P float64

	// Benjamini-Hochberg adjusted p-value across the catalog that
	// produced this row; NaN for a standalone comparison.
	FDR float64
}

// blankStats returns group stats holding only the group size.
func blankStats(level string, n int) GroupStats {
	nan := math.NaN()
	return GroupStats{Level: level, N: n, Mean: nan, Median: nan, SD: nan, Min: nan, Max: nan}
}

// notComputed returns a comparison row with every statistic missing.
func notComputed(key, levelA, levelB string, na, nb int) Comparison {
	nan := math.NaN()
	return Comparison{
		Key:         key,
		Status:      seatrac.NotComputed,
		A:           blankStats(levelA, na),
		B:           blankStats(levelB, nb),
		MeanDiff:    nan,
		MedianDiff:  nan,
		MeanRatio:   Ratio{Value: nan},
		MedianRatio: Ratio{Value: nan},
		U:           nan,
		P:           nan,
		FDR:         nan,
	}
}

// desc summarizes one group of complete observations.
func desc(level string, x []float64) GroupStats {

	g := blankStats(level, len(x))
	if len(x) == 0 {
		return g
	}

	g.Mean, _ = mstats.Mean(x)
	g.Median, _ = mstats.Median(x)
	g.SD, _ = mstats.StandardDeviationSample(x)
	g.Min, _ = mstats.Min(x)
	g.Max, _ = mstats.Max(x)

	return g
}

// ratio divides a by b, marking the result undefined when b is zero.
func ratio(a, b float64) Ratio {
	if b == 0 {
		return Ratio{Value: math.NaN()}
	}
	return Ratio{Value: a / b, Defined: true}
}

// rankSum returns the Mann-Whitney U statistic for groups a and b and
// its two sided p-value from the tie corrected normal approximation.
// When every observation is tied the test carries no information and
// the p-value is 1.
func rankSum(a, b []float64) (float64, float64) {

	n1 := float64(len(a))
	n2 := float64(len(b))
	all := make([]float64, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)

	r := seatrac.Ranks(all)
	var r1 float64
	for i := range a {
		r1 += r[i]
	}

	u1 := r1 - n1*(n1+1)/2
	u := math.Min(u1, n1*n2-u1)

	n := n1 + n2
	sigma2 := n1 * n2 / 12 * (n + 1 - seatrac.TieSum(all)/(n*(n-1)))
	if sigma2 <= 0 {
		return u, 1
	}

	z := (u - n1*n2/2) / math.Sqrt(sigma2)
	nd := distuv.Normal{Mu: 0, Sigma: 1}

	return u, 2 * nd.CDF(-math.Abs(z))
}

// Compare computes the two group comparison of one variable.  values
// and labels run parallel over the joined observations; observations
// whose label is neither levelA nor levelB are ignored.  A missing
// value anywhere in either group marks the whole variable not
// computed, and an empty group leaves nothing to compare.  Compare
// panics when the slices do not align or the two levels coincide.
func Compare(key string, values []float64, labels []string, levelA, levelB string) Comparison {

	if len(values) != len(labels) {
		panic("groupdiff: values and labels must align")
	}
	if levelA == levelB {
		panic("groupdiff: comparison levels coincide")
	}

	var a, b []float64
	anyMissing := false
	for i, v := range values {
		switch labels[i] {
		case levelA:
			a = append(a, v)
		case levelB:
			b = append(b, v)
		default:
			continue
		}
		if math.IsNaN(v) {
			anyMissing = true
		}
	}

	cmp := notComputed(key, levelA, levelB, len(a), len(b))

	switch {
	case anyMissing:
		cmp.Reason = seatrac.MissingValues
		return cmp
	case len(a) == 0 || len(b) == 0:
		cmp.Reason = seatrac.InsufficientGroupSize
		return cmp
	}

	cmp.Status = seatrac.Computed
	cmp.Reason = seatrac.NoReason
	cmp.A = desc(levelA, a)
	cmp.B = desc(levelB, b)
	cmp.MeanDiff = cmp.A.Mean - cmp.B.Mean
	cmp.MedianDiff = cmp.A.Median - cmp.B.Median
	cmp.MeanRatio = ratio(cmp.A.Mean, cmp.B.Mean)
	cmp.MedianRatio = ratio(cmp.A.Median, cmp.B.Median)
	cmp.U, cmp.P = rankSum(a, b)

	return cmp
}
