package groupdiff

import (
	"log"
	"runtime"
	"sync"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Catalog compares a batch of response variables between two cohort
// groups.  Configure it with the chained setters, then call Done to
// run the batch and obtain the result table.
type Catalog struct {

	// The response rows to draw variables from.
	rows []study.Measurement

	// Group label per animal; animals without a label stay out of
	// the comparisons.
	groups map[string]string

	// The two group levels being compared, A relative to B.
	levelA string
	levelB string

	// The requested variable keys; nil means every distinct key in
	// the rows.
	keys []string

	// Number of concurrent workers.
	nworkers int

	// If not nil, write progress messages here.
	log *log.Logger
}

// NewCatalog creates a comparison batch over the response rows, with
// animals grouped by the given labels and group levelA compared to
// levelB.  NewCatalog panics when the two levels coincide.
func NewCatalog(rows []study.Measurement, groups map[string]string, levelA, levelB string) *Catalog {

	if levelA == levelB {
		panic("groupdiff: comparison levels coincide")
	}

	return &Catalog{
		rows:   rows,
		groups: groups,
		levelA: levelA,
		levelB: levelB,
	}
}

// Keys restricts the batch to the given variable keys, one output row
// per requested key in the order given.  Without it, every distinct
// key in the rows is compared in sorted order.
func (c *Catalog) Keys(keys ...string) *Catalog {
	c.keys = keys
	return c
}

// Workers sets the number of concurrent workers used to run the
// batch.  The default is the number of CPUs.
func (c *Catalog) Workers(n int) *Catalog {
	c.nworkers = n
	return c
}

// Log provides a logger that writes progress messages.
func (c *Catalog) Log(l *log.Logger) *Catalog {
	c.log = l
	return c
}

// compareKey builds the comparison row for one variable key.
func (c *Catalog) compareKey(key string) Comparison {

	sel, err := study.Select(c.rows, key, study.MatchKey, 0)
	if err != nil {
		if c.log != nil {
			c.log.Printf("not comparing %q: %v", key, err)
		}
		cmp := notComputed(key, c.levelA, c.levelB, 0, 0)
		cmp.Reason = seatrac.AmbiguousVariable
		return cmp
	}

	var values []float64
	var labels []string
	for _, r := range sel {
		lbl, ok := c.groups[r.Animal]
		if !ok {
			continue
		}
		values = append(values, r.Value)
		labels = append(labels, lbl)
	}

	return Compare(key, values, labels, c.levelA, c.levelB)
}

// Done runs the batch and returns the result table, with one row per
// requested variable and the Benjamini-Hochberg adjustment taken over
// the whole batch.
func (c *Catalog) Done() *Table {

	keys := c.keys
	if keys == nil {
		keys = study.Keys(c.rows)
	}

	if c.log != nil {
		c.log.Printf("comparing %d variables: %q vs %q", len(keys), c.levelA, c.levelB)
	}

	cmps := make([]Comparison, len(keys))

	nw := c.nworkers
	if nw <= 0 {
		nw = runtime.NumCPU()
	}
	if nw > len(keys) {
		nw = len(keys)
	}

	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := w; j < len(keys); j += nw {
				cmps[j] = c.compareKey(keys[j])
			}
		}(w)
	}
	wg.Wait()

	// The adjustment family is the whole batch; rows without a
	// p-value stay NaN and do not count toward it.
	ps := make([]float64, len(cmps))
	for i := range cmps {
		ps[i] = cmps[i].P
	}
	nfdr := 0
	for i, v := range seatrac.BenjaminiHochberg(ps) {
		cmps[i].FDR = v
		if cmps[i].Status == seatrac.Computed {
			nfdr++
		}
	}

	if c.log != nil {
		c.log.Printf("computed %d of %d comparisons", nfdr, len(cmps))
	}

	rows := make([]Row, len(cmps))
	for i, cm := range cmps {
		rows[i] = Row{Comparison: cm}
	}

	return &Table{rows: rows, levelA: c.levelA, levelB: c.levelB, nfdr: nfdr}
}
