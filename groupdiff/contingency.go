package groupdiff

import (
	fet "github.com/glycerine/golang-fisher-exact"

	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Contingency is a 2x2 table of animal counts, crossing the
// protection outcome with a Boolean cohort split.
type Contingency struct {
	ProtectedIn     int
	ProtectedOut    int
	NotProtectedIn  int
	NotProtectedOut int
}

// CrossTab counts the animals with known outcomes against a cohort
// split, e.g. a dose bin threshold.  Animals whose split criterion is
// itself unknown should be filtered out beforehand.
func CrossTab(animals []study.Animal, split func(study.Animal) bool) Contingency {

	var ct Contingency
	for _, a := range animals {
		switch {
		case a.Outcome == study.Protected && split(a):
			ct.ProtectedIn++
		case a.Outcome == study.Protected:
			ct.ProtectedOut++
		case a.Outcome == study.NotProtected && split(a):
			ct.NotProtectedIn++
		case a.Outcome == study.NotProtected:
			ct.NotProtectedOut++
		}
	}

	return ct
}

// N returns the number of animals in the table.
func (ct Contingency) N() int {
	return ct.ProtectedIn + ct.ProtectedOut + ct.NotProtectedIn + ct.NotProtectedOut
}

// Association holds the independence tests of a contingency table.
type Association struct {

	// Chi-square statistic and p-value, with the Yates continuity
	// correction.
	Chi2  float64
	Chi2P float64

	// Two sided Fisher exact p-value.
	FisherP float64
}

// Test runs the chi-square test with the Yates correction and the two
// sided Fisher exact test on the table.
func (ct Contingency) Test() Association {

	chi2, chiP := fet.ChiSquareTest(ct.ProtectedIn, ct.ProtectedOut,
		ct.NotProtectedIn, ct.NotProtectedOut, true)

	_, _, _, twop := fet.FisherExactTest(ct.ProtectedIn, ct.ProtectedOut,
		ct.NotProtectedIn, ct.NotProtectedOut)

	return Association{Chi2: chi2, Chi2P: chiP, FisherP: twop}
}
