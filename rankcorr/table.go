package rankcorr

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/dstream/dstream"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Row is one screened pair: a correlation plus the reporting
// descriptors filled in by Enrich.
type Row struct {
	Correlation

	Tissue   study.Tissue
	Unit     study.Unit
	ShortKey string
}

// Table holds one row per screened (reference, variable) pair.
type Table struct {
	rows []Row

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

// Computed returns the number of rows whose correlation was computed.
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

// FilterModule returns a new table holding the rows screened against
// the given reference.
func (t *Table) FilterModule(module string) *Table {

	out := new(Table)
	for _, r := range t.rows {
		if r.Module == module {
			out.rows = append(out.rows, r)
			if r.Status == seatrac.Computed {
				out.nfdr++
			}
		}
	}

	return out
}

// FilterTissue returns a new table holding the rows whose variable was
// measured in the given tissue.  The table must be enriched first,
// since the tissue of a row comes from the descriptor join.
func (t *Table) FilterTissue(ti study.Tissue) *Table {

	out := new(Table)
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
// reference and key.  It returns the table for chaining.
func (t *Table) SortByP() *Table {

	sort.SliceStable(t.rows, func(i, j int) bool {
		pi, pj := t.rows[i].P, t.rows[j].P
		switch {
		case math.IsNaN(pi) && math.IsNaN(pj):
		case math.IsNaN(pi):
			return false
		case math.IsNaN(pj):
			return true
		case pi != pj:
			return pi < pj
		}
		if t.rows[i].Module != t.rows[j].Module {
			return t.rows[i].Module < t.rows[j].Module
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

// Dstream materializes the table for downstream plotting and
// reporting tools.
func (t *Table) Dstream() dstream.Dstream {

	n := len(t.rows)
	module := make([]string, n)
	mtime := make([]string, n)
	key := make([]string, n)
	short := make([]string, n)
	tissue := make([]string, n)
	unit := make([]string, n)
	status := make([]string, n)
	reason := make([]string, n)
	nn := make([]float64, n)
	rho := make([]float64, n)
	p := make([]float64, n)
	fdr := make([]float64, n)

	for i, r := range t.rows {
		module[i] = r.Module
		mtime[i] = r.ModuleTime.String()
		key[i] = r.Key
		short[i] = r.ShortKey
		tissue[i] = tissueLabel(r.Tissue)
		unit[i] = unitLabel(r.Unit)
		status[i] = r.Status.String()
		reason[i] = r.Reason.String()
		nn[i] = float64(r.N)
		rho[i] = r.Rho
		p[i] = r.P
		fdr[i] = r.FDR
	}

	da := []interface{}{
		module, mtime, key, short, tissue, unit, status, reason,
		nn, rho, p, fdr,
	}
	names := []string{
		"module", "module_time", "key", "short_key", "tissue", "unit",
		"status", "reason", "n", "rho", "p", "fdr",
	}

	return dstream.NewFromFlat(da, names)
}

// Summary returns a fixed-width text rendering of the table.
func (t *Table) Summary() *seatrac.SummaryTable {

	sum := &seatrac.SummaryTable{}

	sum.Title = "Spearman correlation screen"

	mods := make(map[string]bool)
	keys := make(map[string]bool)
	for _, r := range t.rows {
		mods[r.Module] = true
		keys[r.Key] = true
	}

	sum.Top = []string{
		fmt.Sprintf("References: %d", len(mods)),
		fmt.Sprintf("Variables:  %d", len(keys)),
		fmt.Sprintf("Pairs:      %d", len(t.rows)),
		fmt.Sprintf("Computed:   %d", t.nfdr),
	}

	n := len(t.rows)
	module := make([]string, n)
	key := make([]string, n)
	nn := make([]int, n)
	rho := make([]float64, n)
	p := make([]float64, n)
	fdr := make([]float64, n)
	note := make([]string, n)

	for i, r := range t.rows {
		module[i] = r.Module
		key[i] = r.Key
		nn[i] = r.N
		rho[i] = r.Rho
		p[i] = r.P
		fdr[i] = r.FDR
		note[i] = r.Reason.String()
	}

	sum.ColNames = []string{"Module   ", "Variable   ", "N", "Rho", "P", "FDR", "Note"}

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

	sum.ColFmt = []seatrac.Fmter{fs, fs, fi, fn, fn, fn, fs}
	sum.Cols = []interface{}{module, key, nn, rho, p, fdr, note}

	return sum
}
