package rankcorr

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// A Reference is a per-animal series, typically the scores of one
// gene module at a fixed time point, against which immune response
// variables are screened.
type Reference struct {

	// Module names the series.
	Module string

	// Time is the time point at which the series was observed.
	Time study.TimePoint

	// Values maps animal ids to the series values.  Animals absent
	// from the map, or mapped to NaN, do not join.
	Values map[string]float64
}

// A Correlation is the Spearman rank correlation between one
// reference series and one immune response variable, joined on
// animal.
type Correlation struct {
	Module     string
	ModuleTime study.TimePoint
	Key        string

	Status seatrac.Status
	Reason seatrac.Reason

	// N is the number of animals with complete values on both
	// sides of the join.  It is zero when fewer than two animals
	// joined.
	N int

	Rho float64
	P   float64
	FDR float64
}

// Spearman returns the Spearman rank correlation of two paired series
// and its two sided p-value from the t approximation.  The series
// must be free of NaN and have a common length of at least two, or
// Spearman panics.  If either series is constant the correlation is
// undefined and both returns are NaN.
func Spearman(x, y []float64) (rho, p float64) {

	if len(x) != len(y) {
		panic("rankcorr: unequal series lengths")
	}
	if len(x) < 2 {
		panic("rankcorr: series too short")
	}

	rho = stat.Correlation(seatrac.Ranks(x), seatrac.Ranks(y), nil)

	switch {
	case math.IsNaN(rho):
		return rho, math.NaN()
	case rho*rho >= 1:
		// Perfectly monotone, the t statistic diverges.
		return rho, 0
	}

	n := float64(len(x))
	t := rho * math.Sqrt((n-2)/(1-rho*rho))
	st := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	p = 2 * st.CDF(-math.Abs(t))

	return rho, p
}
