package modscore

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

// SpearmanMatrix returns the Spearman rank correlation matrix of the
// given modules over the samples at one visit, for screening
// redundant modules before correlating them with response variables.
// Only samples scored for every listed module enter, so all entries
// share a common sample set; the second return value lists those
// samples.  A module that is constant over them yields NaN entries.
// It is an error when fewer than two samples are complete.
func (ss *ScoreSet) SpearmanMatrix(modules []string, tp study.TimePoint) (*mat.SymDense, []study.SampleID, error) {

	if len(modules) == 0 {
		return nil, nil, fmt.Errorf("modscore: no modules given")
	}

	var used []study.SampleID
	for _, s := range ss.samples {
		if s.Time != tp {
			continue
		}
		complete := true
		for _, m := range modules {
			if _, ok := ss.index[scoreKey{s, m}]; !ok {
				complete = false
				break
			}
		}
		if complete {
			used = append(used, s)
		}
	}

	if len(used) < 2 {
		return nil, nil, fmt.Errorf("modscore: %d complete samples at %s, need at least 2",
			len(used), tp)
	}

	// Rank transform each module column, then take Pearson
	// correlations of the ranks.
	x := mat.NewDense(len(used), len(modules), nil)
	col := make([]float64, len(used))
	for j, m := range modules {
		for i, s := range used {
			col[i] = ss.scores[ss.index[scoreKey{s, m}]].Value
		}
		for i, v := range seatrac.Ranks(col) {
			x.Set(i, j, v)
		}
	}

	c := mat.NewSymDense(len(modules), nil)
	stat.CorrelationMatrix(c, x, nil)

	return c, used, nil
}
