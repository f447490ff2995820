package groupdiff

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/dstream/dstream"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Row is one table entry: a comparison plus the reporting descriptors
// filled in by Enrich.
type Row struct {
	Comparison

	Tissue   study.Tissue
	Unit     study.Unit
	ShortKey string
}

// Table holds one comparison row per requested variable.
type Table struct {
	rows   []Row
	levelA string
	levelB string

	// Number of computed rows; in a table fresh from Done this is
	// also the size of the FDR adjustment family.
	nfdr int
}

// Rows returns the table rows.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Computed returns the number of rows whose statistics were computed.
func (t *Table) Computed() int {
	return t.nfdr
}

// Enrich joins the reporting descriptors onto the rows.  Rows whose
// key is not covered by the index are left untouched.  It returns the
// table for chaining.
func (t *Table) Enrich(ix *study.DescriptorIndex) *Table {

	for i := range t.rows {
		d, ok := ix.Lookup(t.rows[i].Key)
		if !ok {
			continue
		}
		t.rows[i].Tissue = d.Tissue
		t.rows[i].Unit = d.Unit
		t.rows[i].ShortKey = d.ShortKey
	}

	return t
}

// FilterTissue returns a new table holding the rows measured in the
// given tissue.  The table must be enriched first, since the tissue
// of a row comes from the descriptor join.
func (t *Table) FilterTissue(ti study.Tissue) *Table {

	out := &Table{levelA: t.levelA, levelB: t.levelB}
	for _, r := range t.rows {
		if r.Tissue == ti {
			out.rows = append(out.rows, r)
			if r.Status == seatrac.Computed {
				out.nfdr++
			}
		}
	}

	return out
}

// SortByP orders the rows by increasing p-value, with rows lacking a
// p-value after all others; ties and sentinel rows are ordered by
// key.  It returns the table for chaining.
func (t *Table) SortByP() *Table {

	sort.SliceStable(t.rows, func(i, j int) bool {
		pi, pj := t.rows[i].P, t.rows[j].P
		switch {
		case math.IsNaN(pi) && math.IsNaN(pj):
			return t.rows[i].Key < t.rows[j].Key
		case math.IsNaN(pi):
			return false
		case math.IsNaN(pj):
			return true
		case pi != pj:
			return pi < pj
		}
		return t.rows[i].Key < t.rows[j].Key
	})

	return t
}

// tissueLabel returns the export label of a tissue, empty when the
// row was never enriched.
func tissueLabel(ti study.Tissue) string {
	if ti == study.TissueInvalid {
		return ""
	}
	return ti.String()
}

// unitLabel returns the export label of a unit, empty when the row
// was never enriched.
func unitLabel(u study.Unit) string {
	if u == study.UnitInvalid {
		return ""
	}
	return u.String()
}

// boolFlag encodes a flag as 0 or 1 for export.
func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Dstream materializes the table for downstream plotting and
// reporting tools.  Ratio columns carry a companion 0/1 "_def"
// column, since an undefined ratio and a not computed one both export
// as NaN.
func (t *Table) Dstream() dstream.Dstream {

	n := len(t.rows)
	key := make([]string, n)
	short := make([]string, n)
	tissue := make([]string, n)
	unit := make([]string, n)
	status := make([]string, n)
	reason := make([]string, n)
	na := make([]float64, n)
	nb := make([]float64, n)
	meanA := make([]float64, n)
	meanB := make([]float64, n)
	medianA := make([]float64, n)
	medianB := make([]float64, n)
	sdA := make([]float64, n)
	sdB := make([]float64, n)
	meanDiff := make([]float64, n)
	medianDiff := make([]float64, n)
	meanRatio := make([]float64, n)
	meanRatioDef := make([]float64, n)
	medianRatio := make([]float64, n)
	medianRatioDef := make([]float64, n)
	u := make([]float64, n)
	p := make([]float64, n)
	fdr := make([]float64, n)

	for i, r := range t.rows {
		key[i] = r.Key
		short[i] = r.ShortKey
		tissue[i] = tissueLabel(r.Tissue)
		unit[i] = unitLabel(r.Unit)
		status[i] = r.Status.String()
		reason[i] = r.Reason.String()
		na[i] = float64(r.A.N)
		nb[i] = float64(r.B.N)
		meanA[i] = r.A.Mean
		meanB[i] = r.B.Mean
		medianA[i] = r.A.Median
		medianB[i] = r.B.Median
		sdA[i] = r.A.SD
		sdB[i] = r.B.SD
		meanDiff[i] = r.MeanDiff
		medianDiff[i] = r.MedianDiff
		meanRatio[i] = r.MeanRatio.Value
		meanRatioDef[i] = boolFlag(r.MeanRatio.Defined)
		medianRatio[i] = r.MedianRatio.Value
		medianRatioDef[i] = boolFlag(r.MedianRatio.Defined)
		u[i] = r.U
		p[i] = r.P
		fdr[i] = r.FDR
	}

	da := []interface{}{
		key, short, tissue, unit, status, reason, na, nb,
		meanA, meanB, medianA, medianB, sdA, sdB,
		meanDiff, medianDiff, meanRatio, meanRatioDef,
		medianRatio, medianRatioDef, u, p, fdr,
	}
	names := []string{
		"key", "short_key", "tissue", "unit", "status", "reason", "n_a", "n_b",
		"mean_a", "mean_b", "median_a", "median_b", "sd_a", "sd_b",
		"mean_diff", "median_diff", "mean_ratio", "mean_ratio_def",
		"median_ratio", "median_ratio_def", "u", "p", "fdr",
	}

	return dstream.NewFromFlat(da, names)
}

// Summary returns a fixed-width text rendering of the table.
func (t *Table) Summary() *seatrac.SummaryTable {

	sum := &seatrac.SummaryTable{}

	sum.Title = "Two group comparison of response variables"

	sum.Top = []string{
		fmt.Sprintf("Group A:   %s", t.levelA),
		fmt.Sprintf("Group B:   %s", t.levelB),
		fmt.Sprintf("Variables: %d", len(t.rows)),
		fmt.Sprintf("Computed:  %d", t.nfdr),
	}

	n := len(t.rows)
	key := make([]string, n)
	na := make([]int, n)
	nb := make([]int, n)
	meanDiff := make([]float64, n)
	medianDiff := make([]float64, n)
	meanRatio := make([]string, n)
	p := make([]float64, n)
	fdr := make([]float64, n)
	note := make([]string, n)

	for i, r := range t.rows {
		key[i] = r.Key
		na[i] = r.A.N
		nb[i] = r.B.N
		meanDiff[i] = r.MeanDiff
		medianDiff[i] = r.MedianDiff
		switch {
		case r.Status != seatrac.Computed:
			meanRatio[i] = "NaN"
		case !r.MeanRatio.Defined:
			meanRatio[i] = "undef"
		default:
			meanRatio[i] = fmt.Sprintf("%.4f", r.MeanRatio.Value)
		}
		p[i] = r.P
		fdr[i] = r.FDR
		note[i] = r.Reason.String()
	}

	sum.ColNames = []string{"Variable   ", "N(A)", "N(B)", "Mean diff", "Median diff", "Mean ratio", "P", "FDR", "Note"}

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

	// String formatter, right aligned
	fr := func(x interface{}, h string) []string {
		y := x.([]string)
		var z []string
		for i := range y {
			z = append(z, fmt.Sprintf("%12s", y[i]))
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

	sum.ColFmt = []seatrac.Fmter{fs, fi, fi, fn, fn, fr, fn, fn, fs}
	sum.Cols = []interface{}{key, na, nb, meanDiff, medianDiff, meanRatio, p, fdr, note}

	return sum
}
