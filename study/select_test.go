package study

import (
	"errors"
	"math"
	"testing"
)

func respRow(animal, short string, tp TimePoint, v float64) Measurement {
	return Measurement{
		Animal:   animal,
		Key:      JoinKey(short, tp),
		ShortKey: short,
		Time:     tp,
		Tissue:   BAL,
		Antigen:  "Ag85B",
		Unit:     Percent,
		Value:    v,
	}
}

func selectFixture() []Measurement {
	return []Measurement{
		respRow("a2", balCD4, Week4, 2.5),
		respRow("a1", balCD4, Week2, 1),
		respRow("a1", balCD4, Week4, 2),
		respRow("a1", balCD4, NetAUC, 60),
		respRow("a2", balCD4, Week2, 1.5),
		respRow("a2", balCD4, NetAUC, 70),
		respRow("a1", "CD8/IFNg+ (BAL) %", Week4, 9),
	}
}

func TestSelectByKey(t *testing.T) {

	rows := selectFixture()

	out, err := Select(rows, JoinKey(balCD4, Week4), MatchKey, cumulativeUnset)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 {
		t.Fatalf("got %d rows", len(out))
	}
	if out[0].Animal != "a1" || out[0].Value != 2 {
		t.Errorf("got %+v", out[0])
	}
	if out[1].Animal != "a2" || out[1].Value != 2.5 {
		t.Errorf("got %+v", out[1])
	}
}

func TestSelectByShortKey(t *testing.T) {

	rows := selectFixture()

	out, err := Select(rows, balCD4, MatchShortKey, CumulativeExclude)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 4 {
		t.Fatalf("got %d rows", len(out))
	}
	for _, r := range out {
		if r.Time == NetAUC {
			t.Errorf("cumulative row kept: %+v", r)
		}
	}

	// Sorted by animal, then time.
	if out[0].Animal != "a1" || out[0].Time != Week2 || out[3].Animal != "a2" || out[3].Time != Week4 {
		t.Errorf("got %+v", out)
	}

	only, err := Select(rows, balCD4, MatchShortKey, CumulativeOnly)
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 2 || only[0].Time != NetAUC || only[1].Time != NetAUC {
		t.Errorf("got %+v", only)
	}
}

func TestSelectRequiresCumulativeRule(t *testing.T) {

	var rule CumulativeRule

	_, err := Select(selectFixture(), balCD4, MatchShortKey, rule)
	if !errors.Is(err, ErrCumulativeRuleRequired) {
		t.Fatalf("got %v", err)
	}

	// Exact key selection does not need the rule.
	if _, err := Select(selectFixture(), JoinKey(balCD4, Week2), MatchKey, rule); err != nil {
		t.Fatal(err)
	}
}

func TestSelectAmbiguous(t *testing.T) {

	rows := append(selectFixture(), respRow("a1", balCD4, Week4, 2.1))

	_, err := Select(rows, balCD4, MatchShortKey, CumulativeExclude)

	var ae *AmbiguousVariableError
	if !errors.As(err, &ae) {
		t.Fatalf("got %v", err)
	}
	if ae.Animal != "a1" || ae.Key != JoinKey(balCD4, Week4) {
		t.Errorf("got %+v", ae)
	}
}

func TestSelectEmpty(t *testing.T) {

	out, err := Select(selectFixture(), "CD4/TNF+ (PBMC) %", MatchShortKey, CumulativeExclude)
	if err != nil || len(out) != 0 {
		t.Errorf("got %v, %v", out, err)
	}
}

func TestSelectIdempotent(t *testing.T) {

	a, err := Select(selectFixture(), balCD4, MatchShortKey, CumulativeExclude)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(a, balCD4, MatchShortKey, CumulativeExclude)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatal("length changed")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d changed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestKeys(t *testing.T) {

	rows := selectFixture()

	keys := Keys(rows)
	if len(keys) != 7 {
		t.Fatalf("got %v", keys)
	}

	shorts := ShortKeys(rows)
	if len(shorts) != 2 || shorts[0] != balCD4 {
		t.Errorf("got %v", shorts)
	}
}

func TestDescriptorIndex(t *testing.T) {

	rows := selectFixture()
	rows = append(rows, Measurement{
		Animal: "a1", Key: "bulk_wk2", ShortKey: "bulk", Time: Week2,
		Tissue: PBMC, Unit: Count, Value: math.NaN(),
	})

	ix := NewDescriptorIndex(rows)

	d, ok := ix.Lookup(JoinKey(balCD4, Week4))
	if !ok || d.Tissue != BAL || d.Unit != Percent || d.ShortKey != balCD4 {
		t.Errorf("got %+v,%v", d, ok)
	}

	// Short keys resolve as a fallback.
	d, ok = ix.Lookup("bulk")
	if !ok || d.Tissue != PBMC {
		t.Errorf("got %+v,%v", d, ok)
	}

	if _, ok := ix.Lookup("no such key"); ok {
		t.Fail()
	}
}
