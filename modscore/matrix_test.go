package modscore

import (
	"math"
	"testing"

	"github.com/marknwarden/seatrac-hackday-2024/study"
)

func TestSpearmanMatrix(t *testing.T) {

	// Single-gene modules, so the scores are the gene values.
	var counts []study.GeneCount
	ga := []float64{1, 2, 3, 4}
	gb := []float64{10, 20, 30, 40}
	gc := []float64{5, 1, 0, -2}
	animals := []string{"a1", "a2", "a3", "a4"}
	for i, a := range animals {
		counts = append(counts,
			study.GeneCount{Gene: "GA", Sample: wk2(a), Count: ga[i]},
			study.GeneCount{Gene: "GB", Sample: wk2(a), Count: gb[i]},
			study.GeneCount{Gene: "GC", Sample: wk2(a), Count: gc[i]},
		)
	}

	// An incomplete sample stays out of the matrix.
	counts = append(counts, study.GeneCount{Gene: "GA", Sample: wk2("a5"), Count: 7})

	mapping := []study.GeneModule{
		{Gene: "GA", Module: "M1"},
		{Gene: "GB", Module: "M2"},
		{Gene: "GC", Module: "M3"},
	}

	ss, err := Compute(counts, mapping)
	if err != nil {
		t.Fatal(err)
	}

	c, used, err := ss.SpearmanMatrix([]string{"M1", "M2", "M3"}, study.Week2)
	if err != nil {
		t.Fatal(err)
	}

	if len(used) != 4 {
		t.Fatalf("got %d samples", len(used))
	}

	want := [3][3]float64{
		{1, 1, -1},
		{1, 1, -1},
		{-1, -1, 1},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(c.At(i, j)-want[i][j]) > 1e-10 {
				t.Errorf("c[%d,%d] = %v, want %v", i, j, c.At(i, j), want[i][j])
			}
		}
	}
}

func TestSpearmanMatrixTooFewSamples(t *testing.T) {

	counts := []study.GeneCount{
		{Gene: "GA", Sample: wk2("a1"), Count: 1},
		{Gene: "GB", Sample: wk2("a1"), Count: 2},
	}
	mapping := []study.GeneModule{
		{Gene: "GA", Module: "M1"},
		{Gene: "GB", Module: "M2"},
	}

	ss, err := Compute(counts, mapping)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := ss.SpearmanMatrix([]string{"M1", "M2"}, study.Week2); err == nil {
		t.Fatal("single complete sample not rejected")
	}
}
