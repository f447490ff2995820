package study

import (
	"fmt"
	"math"
	"strconv"
)

// DoseBin places a challenge dose within the configured bin edges.
// The zero value is unassigned.
type DoseBin struct {
	Assigned bool

	// Index of the bin among the configured intervals.
	Index int

	// The half-open interval [Lo, Hi) covering the dose.
	Lo, Hi float64
}

// Label returns the bin as an interval label, e.g. "[5,5.5)", or the
// empty string for an unassigned bin.
func (b DoseBin) Label() string {
	if !b.Assigned {
		return ""
	}
	return fmt.Sprintf("[%s,%s)",
		strconv.FormatFloat(b.Lo, 'g', -1, 64),
		strconv.FormatFloat(b.Hi, 'g', -1, 64))
}

// DoseBins is an ordered set of half-open dose intervals sharing
// edges.
type DoseBins struct {
	edges []float64
}

// NewDoseBins builds bins from ascending edges; each adjacent pair of
// edges defines one interval [lo, hi).  NewDoseBins panics when fewer
// than two edges are given or the edges are not strictly increasing.
func NewDoseBins(edges ...float64) *DoseBins {

	if len(edges) < 2 {
		panic("study: dose bins need at least two edges")
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			panic("study: dose bin edges must be strictly increasing")
		}
	}

	b := &DoseBins{edges: make([]float64, len(edges))}
	copy(b.edges, edges)

	return b
}

// DefaultDoseBins returns the bin edges used across the NHP challenge
// studies, on the log10 CFU scale.
func DefaultDoseBins() *DoseBins {
	return NewDoseBins(4.5, 5, 5.5, 6.0, 6.5, 7, 8)
}

// NumBins returns the number of intervals.
func (b *DoseBins) NumBins() int {
	return len(b.edges) - 1
}

// Assign places a log10 dose in its bin.  Doses outside every
// interval, including NaN, yield an unassigned bin.
func (b *DoseBins) Assign(dose float64) DoseBin {

	if math.IsNaN(dose) {
		return DoseBin{}
	}

	for i := 0; i+1 < len(b.edges); i++ {
		if dose >= b.edges[i] && dose < b.edges[i+1] {
			return DoseBin{Assigned: true, Index: i, Lo: b.edges[i], Hi: b.edges[i+1]}
		}
	}

	return DoseBin{}
}

// LabelCohorts returns a copy of animals with dose bins assigned and,
// for animals without a recorded outcome, protection derived from the
// granuloma count: at most maxGranulomas granulomas counts as
// protected.  Animals with neither an outcome nor a granuloma count
// remain OutcomeUnknown.
func LabelCohorts(animals []Animal, bins *DoseBins, maxGranulomas float64) []Animal {

	out := make([]Animal, len(animals))
	copy(out, animals)

	for i := range out {
		out[i].Bin = bins.Assign(out[i].Log10Dose)
		if out[i].Outcome != OutcomeUnknown || math.IsNaN(out[i].Granulomas) {
			continue
		}
		if out[i].Granulomas <= maxGranulomas {
			out[i].Outcome = Protected
		} else {
			out[i].Outcome = NotProtected
		}
	}

	return out
}

// OutcomeLabels maps animal IDs to outcome labels for grouped
// comparisons.  Animals with unknown outcomes are left out.
func OutcomeLabels(animals []Animal) map[string]string {

	m := make(map[string]string)
	for _, a := range animals {
		if a.Outcome != OutcomeUnknown {
			m[a.ID] = a.Outcome.String()
		}
	}

	return m
}

// BinLabels maps animal IDs to dose bin labels for grouped
// comparisons.  Animals with unassigned bins are left out.
func BinLabels(animals []Animal) map[string]string {

	m := make(map[string]string)
	for _, a := range animals {
		if a.Bin.Assigned {
			m[a.ID] = a.Bin.Label()
		}
	}

	return m
}
