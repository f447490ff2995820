package rankcorr

import (
	"log"
	"math"
	"runtime"
	"sync"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/modscore"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// A Catalog screens a set of reference series against a catalog of
// immune response variables.  Each (reference, variable) pair yields
// one Spearman correlation, and the false discovery rates are
// adjusted once across the whole batch.
type Catalog struct {
	refs     []Reference
	rows     []study.Measurement
	keys     []string
	nworkers int
	log      *log.Logger
}

// NewCatalog returns a Catalog screening the given reference series
// against the variables in rows.  By default every distinct variable
// key in rows is a candidate.
func NewCatalog(refs []Reference, rows []study.Measurement) *Catalog {
	return &Catalog{
		refs: refs,
		rows: rows,
	}
}

// FromScores builds one reference series per module from gene module
// scores at the given time point.  With no explicit modules, every
// module in the score set becomes a reference.
func FromScores(ss *modscore.ScoreSet, tp study.TimePoint, modules ...string) []Reference {

	if len(modules) == 0 {
		modules = ss.Modules()
	}

	var refs []Reference
	for _, m := range modules {
		refs = append(refs, Reference{Module: m, Time: tp, Values: ss.SeriesAt(m, tp)})
	}

	return refs
}

// Keys restricts the candidate variables to the given keys, in the
// given order.
func (c *Catalog) Keys(keys ...string) *Catalog {
	c.keys = keys
	return c
}

// Workers sets the number of concurrent workers.
func (c *Catalog) Workers(n int) *Catalog {
	c.nworkers = n
	return c
}

// Log sets a logger for progress messages.
func (c *Catalog) Log(l *log.Logger) *Catalog {
	c.log = l
	return c
}

// corrKey correlates one reference series against one variable.
func (c *Catalog) corrKey(ref Reference, key string) Correlation {

	r := Correlation{
		Module:     ref.Module,
		ModuleTime: ref.Time,
		Key:        key,
		Status:     seatrac.NotComputed,
		Rho:        math.NaN(),
		P:          math.NaN(),
		FDR:        math.NaN(),
	}

	sel, err := study.Select(c.rows, key, study.MatchKey, 0)
	if err != nil {
		if c.log != nil {
			c.log.Printf("not correlating %s against %s: %v", ref.Module, key, err)
		}
		r.Reason = seatrac.AmbiguousVariable
		return r
	}

	var x, y []float64
	for _, m := range sel {
		v, ok := ref.Values[m.Animal]
		if !ok || math.IsNaN(v) || math.IsNaN(m.Value) {
			continue
		}
		x = append(x, v)
		y = append(y, m.Value)
	}

	if len(x) < 2 {
		r.Reason = seatrac.MissingJoinTarget
		return r
	}
	r.N = len(x)

	rho, p := Spearman(x, y)
	if math.IsNaN(rho) {
		r.Reason = seatrac.ZeroVariance
		return r
	}

	r.Status = seatrac.Computed
	r.Reason = seatrac.NoReason
	r.Rho = rho
	r.P = p

	return r
}

// Done runs the screen and returns the result table, one row per
// (reference, variable) pair in reference-major order.  Pairs that
// cannot be computed still get a row, marked with the reason.
func (c *Catalog) Done() *Table {

	keys := c.keys
	if keys == nil {
		keys = study.Keys(c.rows)
	}
	njob := len(c.refs) * len(keys)

	nw := c.nworkers
	if nw <= 0 {
		nw = runtime.NumCPU()
	}
	if nw > njob {
		nw = njob
	}

	if c.log != nil {
		c.log.Printf("correlating %d references against %d variables", len(c.refs), len(keys))
	}

	cors := make([]Correlation, njob)

	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := w; j < njob; j += nw {
				cors[j] = c.corrKey(c.refs[j/len(keys)], keys[j%len(keys)])
			}
		}(w)
	}
	wg.Wait()

	pv := make([]float64, njob)
	for i, r := range cors {
		pv[i] = r.P
	}
	fdr := seatrac.BenjaminiHochberg(pv)

	var nc int
	rows := make([]Row, njob)
	for i, r := range cors {
		r.FDR = fdr[i]
		rows[i] = Row{Correlation: r}
		if r.Status == seatrac.Computed {
			nc++
		}
	}

	if c.log != nil {
		c.log.Printf("computed %d of %d correlations", nc, njob)
	}

	return &Table{rows: rows, nfdr: nc}
}
