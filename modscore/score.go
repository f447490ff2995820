package modscore

import (
	"fmt"
	"math"
	"sort"

	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// Score is the aggregate expression of one gene module in one sample.
type Score struct {
	Sample study.SampleID
	Module string

	// Mean of the module's member gene values measured in the
	// sample.
	Value float64

	// Number of member genes contributing to the mean.
	NGenes int
}

type scoreKey struct {
	sample study.SampleID
	module string
}

// ScoreSet holds the module scores of a study, indexed for lookup and
// series extraction.
type ScoreSet struct {
	scores  []Score
	index   map[scoreKey]int
	modules []string
	samples []study.SampleID
}

// Compute aggregates per-gene expression values into per-module
// scores.  A module's score in a sample is the mean over its member
// genes that carry a value in that sample; missing genes do not count
// as zero, and a module with no measured member gene in a sample gets
// no score at all.  The result does not depend on the order of the
// input rows.  A gene valued twice in one sample is an error.
func Compute(counts []study.GeneCount, mapping []study.GeneModule) (*ScoreSet, error) {

	bySample := make(map[study.SampleID]map[string]float64)
	for _, gc := range counts {
		g := bySample[gc.Sample]
		if g == nil {
			g = make(map[string]float64)
			bySample[gc.Sample] = g
		}
		if _, dup := g[gc.Gene]; dup {
			return nil, fmt.Errorf("modscore: duplicate value for gene %q in sample %s",
				gc.Gene, gc.Sample)
		}
		g[gc.Gene] = gc.Count
	}

	members := make(map[string][]string)
	seen := make(map[study.GeneModule]bool)
	for _, gm := range mapping {
		if seen[gm] {
			continue
		}
		seen[gm] = true
		members[gm.Module] = append(members[gm.Module], gm.Gene)
	}

	// Fixed gene and sample orders make the sums, and therefore the
	// scores, independent of the input row order.
	for _, genes := range members {
		sort.Strings(genes)
	}
	samples := make([]study.SampleID, 0, len(bySample))
	for s := range bySample {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Animal != samples[j].Animal {
			return samples[i].Animal < samples[j].Animal
		}
		return samples[i].Time < samples[j].Time
	})
	modules := make([]string, 0, len(members))
	for m := range members {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	ss := &ScoreSet{index: make(map[scoreKey]int)}
	sampleSeen := make(map[study.SampleID]bool)

	for _, m := range modules {
		any := false
		for _, s := range samples {
			g := bySample[s]
			var sum float64
			n := 0
			for _, gene := range members[m] {
				v, ok := g[gene]
				if !ok || math.IsNaN(v) {
					continue
				}
				sum += v
				n++
			}
			if n == 0 {
				continue
			}
			ss.index[scoreKey{s, m}] = len(ss.scores)
			ss.scores = append(ss.scores, Score{
				Sample: s,
				Module: m,
				Value:  sum / float64(n),
				NGenes: n,
			})
			any = true
			if !sampleSeen[s] {
				sampleSeen[s] = true
				ss.samples = append(ss.samples, s)
			}
		}
		if any {
			ss.modules = append(ss.modules, m)
		}
	}

	sort.Slice(ss.samples, func(i, j int) bool {
		if ss.samples[i].Animal != ss.samples[j].Animal {
			return ss.samples[i].Animal < ss.samples[j].Animal
		}
		return ss.samples[i].Time < ss.samples[j].Time
	})

	return ss, nil
}

// Scores returns all scores, ordered by module, animal and visit.
func (ss *ScoreSet) Scores() []Score {
	return ss.scores
}

// Modules returns the modules that produced at least one score,
// sorted.
func (ss *ScoreSet) Modules() []string {
	return ss.modules
}

// Samples returns the samples that produced at least one score,
// ordered by animal and visit.
func (ss *ScoreSet) Samples() []study.SampleID {
	return ss.samples
}

// Lookup returns the score of a module in a sample.  The second
// return value is false when the module was not measurable in the
// sample.
func (ss *ScoreSet) Lookup(sample study.SampleID, module string) (Score, bool) {
	i, ok := ss.index[scoreKey{sample, module}]
	if !ok {
		return Score{}, false
	}
	return ss.scores[i], true
}

// SeriesAt returns an animal-indexed series holding the scores of one
// module at a fixed visit.  Animals without a score at that visit are
// absent from the map.
func (ss *ScoreSet) SeriesAt(module string, tp study.TimePoint) map[string]float64 {

	out := make(map[string]float64)
	for _, sc := range ss.scores {
		if sc.Module == module && sc.Sample.Time == tp {
			out[sc.Sample.Animal] = sc.Value
		}
	}

	return out
}
