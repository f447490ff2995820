package rankcorr

import (
	"bytes"
	"log"
	"math"
	"testing"

	seatrac "github.com/marknwarden/seatrac-hackday-2024"
	"github.com/marknwarden/seatrac-hackday-2024/modscore"
	"github.com/marknwarden/seatrac-hackday-2024/study"
)

const (
	balPoly = "CD4/IFNg+IL2+TNF+ (BAL) %"
	balIfng = "CD4/IFNg+ (BAL) %"
	pbmcCd8 = "CD8/IFNg+ (PBMC) %"
	pbmcIl2 = "CD8/IL2+ (PBMC) %"
	wbTnf   = "CD8/TNF+ (WB) #"
)

func crow(animal, short string, ti study.Tissue, un study.Unit, v float64) study.Measurement {
	return study.Measurement{
		Animal:   animal,
		Key:      study.JoinKey(short, study.Week4),
		ShortKey: short,
		Time:     study.Week4,
		Tissue:   ti,
		Antigen:  "Ag85B",
		Unit:     un,
		Value:    v,
	}
}

func screenRows() []study.Measurement {

	rows := []study.Measurement{
		crow("a1", balPoly, study.BAL, study.Percent, 10),
		crow("a2", balPoly, study.BAL, study.Percent, 5),
		crow("a3", balPoly, study.BAL, study.Percent, 12),
		crow("a4", balPoly, study.BAL, study.Percent, 20),
		crow("a5", balPoly, study.BAL, study.Percent, 15),

		crow("a1", balIfng, study.BAL, study.Percent, 2),
		crow("a2", balIfng, study.BAL, study.Percent, 4),
		crow("a3", balIfng, study.BAL, study.Percent, 6),
		crow("a4", balIfng, study.BAL, study.Percent, 8),
		crow("a5", balIfng, study.BAL, study.Percent, 10),

		// Joins only one animal with reference values.
		crow("a1", pbmcCd8, study.PBMC, study.Percent, 3),
		crow("zz", pbmcCd8, study.PBMC, study.Percent, 4),

		crow("a1", pbmcIl2, study.PBMC, study.Percent, 7),
		crow("a2", pbmcIl2, study.PBMC, study.Percent, 7),
		crow("a3", pbmcIl2, study.PBMC, study.Percent, 7),
		crow("a4", pbmcIl2, study.PBMC, study.Percent, 7),
		crow("a5", pbmcIl2, study.PBMC, study.Percent, 7),

		crow("a1", wbTnf, study.WholeBlood, study.Count, 3),
		crow("a1", wbTnf, study.WholeBlood, study.Count, 4),
	}

	return rows
}

func screenRef() Reference {
	return Reference{
		Module: "M1",
		Time:   study.Week2,
		Values: map[string]float64{"a1": 1, "a2": 2, "a3": 3, "a4": 4, "a5": 5},
	}
}

func findRow(t *testing.T, tab *Table, module, key string) Row {
	t.Helper()
	for _, r := range tab.Rows() {
		if r.Module == module && r.Key == key {
			return r
		}
	}
	t.Fatalf("no row for %s against %q", module, key)
	return Row{}
}

func TestCatalog(t *testing.T) {

	var buf bytes.Buffer
	lg := log.New(&buf, "", 0)

	tab := NewCatalog([]Reference{screenRef()}, screenRows()).
		Workers(3).
		Log(lg).
		Done()

	if tab.Len() != 5 {
		t.Fatalf("got %d rows", tab.Len())
	}
	if tab.Computed() != 2 {
		t.Errorf("got %d computed", tab.Computed())
	}

	up := findRow(t, tab, "M1", study.JoinKey(balPoly, study.Week4))
	if up.Status != seatrac.Computed || up.N != 5 {
		t.Fatalf("got %+v", up)
	}
	if math.Abs(up.Rho-0.8) > 1e-12 || math.Abs(up.P-0.104088) > 1e-5 {
		t.Errorf("got rho %v p %v", up.Rho, up.P)
	}

	perf := findRow(t, tab, "M1", study.JoinKey(balIfng, study.Week4))
	if perf.Rho != 1 || perf.P != 0 || perf.FDR != 0 {
		t.Errorf("got %+v", perf)
	}

	// Two p-values enter the adjustment: 0 and 0.104088.
	if math.Abs(up.FDR-0.104088) > 1e-5 {
		t.Errorf("got fdr %v", up.FDR)
	}

	short := findRow(t, tab, "M1", study.JoinKey(pbmcCd8, study.Week4))
	if short.Reason != seatrac.MissingJoinTarget || short.N != 0 {
		t.Errorf("got %+v", short)
	}
	if !math.IsNaN(short.Rho) || !math.IsNaN(short.P) || !math.IsNaN(short.FDR) {
		t.Errorf("got %+v", short)
	}

	flat := findRow(t, tab, "M1", study.JoinKey(pbmcIl2, study.Week4))
	if flat.Reason != seatrac.ZeroVariance || flat.N != 5 {
		t.Errorf("got %+v", flat)
	}

	amb := findRow(t, tab, "M1", study.JoinKey(wbTnf, study.Week4))
	if amb.Reason != seatrac.AmbiguousVariable {
		t.Errorf("got %+v", amb)
	}

	if buf.Len() == 0 {
		t.Error("no progress logged")
	}
}

func TestCatalogBatchFDR(t *testing.T) {

	rev := Reference{
		Module: "M2",
		Time:   study.Week2,
		Values: map[string]float64{"a1": 5, "a2": 4, "a3": 3, "a4": 2, "a5": 1},
	}

	tab := NewCatalog([]Reference{screenRef(), rev}, screenRows()).
		Keys(study.JoinKey(balPoly, study.Week4), study.JoinKey(balIfng, study.Week4)).
		Done()

	if tab.Len() != 4 {
		t.Fatalf("got %d rows", tab.Len())
	}

	// Reference-major row order.
	rows := tab.Rows()
	if rows[0].Module != "M1" || rows[2].Module != "M2" {
		t.Errorf("got order %s, %s, %s, %s",
			rows[0].Module, rows[1].Module, rows[2].Module, rows[3].Module)
	}

	down := findRow(t, tab, "M2", study.JoinKey(balPoly, study.Week4))
	if math.Abs(down.Rho+0.8) > 1e-12 {
		t.Errorf("got rho %v", down.Rho)
	}

	// The adjustment family is all four p-values, 0 twice and
	// 0.104088 twice.
	for _, m := range []string{"M1", "M2"} {
		r := findRow(t, tab, m, study.JoinKey(balIfng, study.Week4))
		if r.FDR != 0 {
			t.Errorf("got fdr %v for %s", r.FDR, m)
		}
		r = findRow(t, tab, m, study.JoinKey(balPoly, study.Week4))
		if math.Abs(r.FDR-0.104088) > 1e-5 {
			t.Errorf("got fdr %v for %s", r.FDR, m)
		}
	}

	if tab.FilterModule("M2").Len() != 2 {
		t.Errorf("got %d M2 rows", tab.FilterModule("M2").Len())
	}
}

func TestCatalogDeterministic(t *testing.T) {

	refs := []Reference{screenRef()}

	t1 := NewCatalog(refs, screenRows()).Workers(4).Done()
	t2 := NewCatalog(refs, screenRows()).Workers(1).Done()

	if t1.Len() != t2.Len() {
		t.Fatal("length differs")
	}
	for i := range t1.Rows() {
		r1, r2 := t1.Rows()[i], t2.Rows()[i]
		if r1.Key != r2.Key || r1.Status != r2.Status {
			t.Errorf("row %d differs", i)
		}
		if r1.Status == seatrac.Computed && (r1.Rho != r2.Rho || r1.P != r2.P) {
			t.Errorf("row %d differs", i)
		}
	}
}

func TestFromScores(t *testing.T) {

	wk2 := func(a string) study.SampleID {
		return study.SampleID{Animal: a, Time: study.Week2}
	}

	counts := []study.GeneCount{
		{Gene: "G1", Sample: wk2("a1"), Count: 1},
		{Gene: "G1", Sample: wk2("a2"), Count: 2},
		{Gene: "G1", Sample: wk2("a3"), Count: 3},
		{Gene: "G1", Sample: study.SampleID{Animal: "a1", Time: study.Pre}, Count: 9},
	}
	mapping := []study.GeneModule{{Gene: "G1", Module: "M1"}}

	ss, err := modscore.Compute(counts, mapping)
	if err != nil {
		t.Fatal(err)
	}

	refs := FromScores(ss, study.Week2)
	if len(refs) != 1 || refs[0].Module != "M1" || refs[0].Time != study.Week2 {
		t.Fatalf("got %+v", refs)
	}

	want := map[string]float64{"a1": 1, "a2": 2, "a3": 3}
	if len(refs[0].Values) != len(want) {
		t.Fatalf("got %+v", refs[0].Values)
	}
	for a, v := range want {
		if refs[0].Values[a] != v {
			t.Errorf("got %v for %s", refs[0].Values[a], a)
		}
	}
}

func TestTableEnrichSort(t *testing.T) {

	rows := screenRows()
	tab := NewCatalog([]Reference{screenRef()}, rows).Done()

	tab.Enrich(study.NewDescriptorIndex(rows)).SortByP()

	first := tab.Rows()[0]
	if first.Key != study.JoinKey(balIfng, study.Week4) || first.Tissue != study.BAL {
		t.Errorf("got %+v", first)
	}
	for _, r := range tab.Rows()[2:] {
		if !math.IsNaN(r.P) {
			t.Errorf("computed row sorted after sentinels: %+v", r)
		}
	}

	if n := tab.FilterTissue(study.BAL).Len(); n != 2 {
		t.Errorf("got %d BAL rows", n)
	}

	ds := tab.Dstream()
	if len(ds.Names()) != 12 {
		t.Fatalf("got %d columns", len(ds.Names()))
	}
	ds.Reset()
	if !ds.Next() {
		t.Fatal("empty stream")
	}
	if keys := ds.Get("key").([]string); len(keys) != tab.Len() {
		t.Errorf("got %d rows", len(keys))
	}

	if s := tab.Summary().String(); len(s) == 0 {
		t.Fatal("empty summary")
	}
}
