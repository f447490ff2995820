package study

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

type aucPoint struct {
	day int
	val float64
}

// ComputeNetAUC integrates one response variable per animal over the
// visit schedule by the trapezoid rule, net of the baseline value at
// the Pre visit.  rows should hold the single-visit records of one
// variable, e.g. from Select with CumulativeExclude.  Missing values
// are skipped, not interpolated.  Every animal appearing in rows gets
// an entry; animals without a baseline or with fewer than two usable
// visits get NaN.
func ComputeNetAUC(rows []Measurement) (map[string]float64, error) {

	series := make(map[string][]aucPoint)
	seen := make(map[SampleID]bool)

	for _, r := range rows {
		day, ok := r.Time.Day()
		if !ok {
			return nil, fmt.Errorf("study: net AUC over non-visit record %q", r.Key)
		}
		s := SampleID{Animal: r.Animal, Time: r.Time}
		if seen[s] {
			return nil, &AmbiguousVariableError{Ident: r.ShortKey, Animal: r.Animal, Key: r.Key}
		}
		seen[s] = true

		if _, ok := series[r.Animal]; !ok {
			series[r.Animal] = nil
		}
		if !math.IsNaN(r.Value) {
			series[r.Animal] = append(series[r.Animal], aucPoint{day, r.Value})
		}
	}

	out := make(map[string]float64, len(series))
	for a, pts := range series {
		out[a] = netTrapezoid(pts)
	}

	return out, nil
}

// netTrapezoid integrates one animal's series net of its baseline.
func netTrapezoid(pts []aucPoint) float64 {

	sort.Slice(pts, func(i, j int) bool { return pts[i].day < pts[j].day })

	if len(pts) < 2 || pts[0].day != 0 {
		return math.NaN()
	}

	base := pts[0].val
	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i] = float64(p.day)
		y[i] = p.val - base
	}

	return integrate.Trapezoidal(x, y)
}
