package groupdiff

import (
	"fmt"
	"math"
	"sort"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Profile is a longitudinal summary of one response variable:
// descriptive statistics per cohort level and visit time point.
type Profile struct {

	// ShortKey identifies the profiled variable.
	ShortKey string

	// Levels are the cohort levels seen in the series, sorted.
	Levels []string

	// Times are the visit time points seen in the series, in visit
	// order.
	Times []study.TimePoint

	cells map[profileKey]GroupStats
}

type profileKey struct {
	level string
	time  study.TimePoint
}

// TimeProfile tabulates one short-key series by cohort level and time
// point.  Cumulative records are excluded, since the time axis is the
// point of the table.  Unlike Compare, the cells are descriptive:
// missing values are simply dropped, and a cell with no usable values
// keeps NaN statistics with a zero count.
func TimeProfile(rows []study.Measurement, groups map[string]string, short string) (*Profile, error) {

	sel, err := study.Select(rows, short, study.MatchShortKey, study.CumulativeExclude)
	if err != nil {
		return nil, err
	}

	vals := make(map[profileKey][]float64)
	levels := make(map[string]bool)
	times := make(map[study.TimePoint]bool)
	for _, m := range sel {
		g, ok := groups[m.Animal]
		if !ok {
			continue
		}
		levels[g] = true
		times[m.Time] = true
		if !math.IsNaN(m.Value) {
			k := profileKey{level: g, time: m.Time}
			vals[k] = append(vals[k], m.Value)
		}
	}

	pr := &Profile{
		ShortKey: short,
		cells:    make(map[profileKey]GroupStats),
	}
	for g := range levels {
		pr.Levels = append(pr.Levels, g)
	}
	sort.Strings(pr.Levels)
	for tp := range times {
		pr.Times = append(pr.Times, tp)
	}
	sort.Slice(pr.Times, func(i, j int) bool { return pr.Times[i] < pr.Times[j] })

	for _, tp := range pr.Times {
		for _, g := range pr.Levels {
			k := profileKey{level: g, time: tp}
			pr.cells[k] = desc(g, vals[k])
		}
	}

	return pr, nil
}

// Cell returns the summary of one cohort level at one time point.
func (pr *Profile) Cell(level string, tp study.TimePoint) (GroupStats, bool) {
	g, ok := pr.cells[profileKey{level: level, time: tp}]
	return g, ok
}

// Summary returns a fixed-width text rendering of the profile, one row
// per time point and cohort level.
func (pr *Profile) Summary() *seatrac.SummaryTable {

	sum := &seatrac.SummaryTable{}

	sum.Title = "Response profile over time"
	sum.Top = []string{fmt.Sprintf("Variable: %s", pr.ShortKey)}

	var times, levels []string
	var n []int
	var mean, median, sd []float64

	for _, tp := range pr.Times {
		for _, g := range pr.Levels {
			c := pr.cells[profileKey{level: g, time: tp}]
			times = append(times, tp.String())
			levels = append(levels, g)
			n = append(n, c.N)
			mean = append(mean, c.Mean)
			median = append(median, c.Median)
			sd = append(sd, c.SD)
		}
	}

	sum.ColNames = []string{"Time ", "Group   ", "N", "Mean", "Median", "SD"}

	// String formatter, left aligned
	fs := func(x interface{}, h string) []string {
		y := x.([]string)
		m := len(h)
		for i := range y {
			if len(y[i]) > m {
				m = len(y[i])
			}
		}
		var z []string
		for i := range y {
			c := fmt.Sprintf("%%-%ds", m)
			z = append(z, fmt.Sprintf(c, y[i]))
		}
		return z
	}

	// Number formatter
	fn := func(x interface{}, h string) []string {
		y := x.([]float64)
		var s []string
		for i := range y {
			s = append(s, fmt.Sprintf("%12.4f", y[i]))
		}
		return s
	}

	// Count formatter
	fi := func(x interface{}, h string) []string {
		y := x.([]int)
		var s []string
		for i := range y {
			s = append(s, fmt.Sprintf("%6d", y[i]))
		}
		return s
	}

	sum.ColFmt = []seatrac.Fmter{fs, fs, fi, fn, fn, fn}
	sum.Cols = []interface{}{times, levels, n, mean, median, sd}

	return sum
}
