package study

import (
	"testing"
)

func TestParseTimePoint(t *testing.T) {

	for _, c := range []struct {
		s  string
		tp TimePoint
		ok bool
	}{
		{"pre", Pre, true},
		{"Pre", Pre, true},
		{"0", Pre, true},
		{"d2", Day2, true},
		{"day2", Day2, true},
		{"wk2", Week2, true},
		{"2", Week2, true},
		{"week4", Week4, true},
		{"wk8", Week8, true},
		{"12", Week12, true},
		{"nAUC", NetAUC, true},
		{"NAUC", NetAUC, true},
		{" wk4 ", Week4, true},
		{"wk3", TimeInvalid, false},
		{"", TimeInvalid, false},
	} {
		tp, ok := ParseTimePoint(c.s)
		if tp != c.tp || ok != c.ok {
			t.Errorf("ParseTimePoint(%q) = %v,%v, want %v,%v", c.s, tp, ok, c.tp, c.ok)
		}
	}
}

func TestTimePointOrderAndDays(t *testing.T) {

	ord := []TimePoint{Pre, Day2, Week2, Week4, Week8, Week12, NetAUC}
	for i := 1; i < len(ord); i++ {
		if ord[i-1] >= ord[i] {
			t.Errorf("%v not before %v", ord[i-1], ord[i])
		}
	}

	days := []int{0, 2, 14, 28, 56, 84}
	for i, tp := range ord[:6] {
		d, ok := tp.Day()
		if !ok || d != days[i] {
			t.Errorf("%v.Day() = %v,%v, want %v,true", tp, d, ok, days[i])
		}
	}
	if _, ok := NetAUC.Day(); ok {
		t.Fail()
	}
}

func TestParseSampleID(t *testing.T) {

	s, ok := ParseSampleID("dmgj8_wk2")
	if !ok || s.Animal != "dmgj8" || s.Time != Week2 {
		t.Errorf("got %v,%v", s, ok)
	}

	// Animal identifiers may contain underscores.
	s, ok = ParseSampleID("cy_1091_pre")
	if !ok || s.Animal != "cy_1091" || s.Time != Pre {
		t.Errorf("got %v,%v", s, ok)
	}

	for _, bad := range []string{"dmgj8", "dmgj8_", "_wk2", "dmgj8_wk3"} {
		if _, ok := ParseSampleID(bad); ok {
			t.Errorf("ParseSampleID(%q) should fail", bad)
		}
	}

	if lbl := (SampleID{Animal: "dmgj8", Time: Week2}).String(); lbl != "dmgj8_wk2" {
		t.Errorf("got %q", lbl)
	}
}

func TestParseVariableKey(t *testing.T) {

	vk, ok := ParseVariableKey("CD4/IFNg+IL2+TNF+ (BAL) %")
	if !ok {
		t.Fatal("parse failed")
	}
	if vk.Subset != "CD4" || vk.Tissue != BAL || vk.Unit != Percent {
		t.Errorf("got %+v", vk)
	}
	if len(vk.Markers) != 3 || vk.Markers[0] != (Marker{"IFNg", true}) {
		t.Errorf("got markers %v", vk.Markers)
	}
	if vk.String() != "CD4/IFNg+IL2+TNF+ (BAL) %" {
		t.Errorf("round trip gave %q", vk.String())
	}

	vk, ok = ParseVariableKey("CD8/IFNg+IL17- (Lung) #")
	if !ok || vk.Markers[1] != (Marker{"IL17", false}) || vk.Unit != Count {
		t.Errorf("got %+v,%v", vk, ok)
	}

	for _, bad := range []string{
		"",
		"CD4",
		"CD4/IFNg (BAL) %",
		"CD4/IFNg+ (BAL)",
		"CD4/IFNg+ (spleen) %",
		"/IFNg+ (BAL) %",
	} {
		if _, ok := ParseVariableKey(bad); ok {
			t.Errorf("ParseVariableKey(%q) should fail", bad)
		}
	}
}

func TestSplitJoinKey(t *testing.T) {

	short := "CD4/IFNg+IL2+TNF+ (BAL) %"

	s, tp, ok := SplitKey(JoinKey(short, Week4))
	if !ok || s != short || tp != Week4 {
		t.Errorf("got %q,%v,%v", s, tp, ok)
	}

	s, tp, ok = SplitKey(short + "_nAUC")
	if !ok || s != short || tp != NetAUC {
		t.Errorf("got %q,%v,%v", s, tp, ok)
	}

	if _, _, ok := SplitKey("no suffix here"); ok {
		t.Fail()
	}
}

func TestCompartment(t *testing.T) {

	for _, c := range []struct {
		ti Tissue
		co Compartment
	}{
		{BAL, Airway},
		{Lung, Airway},
		{PBMC, Peripheral},
		{WholeBlood, Peripheral},
	} {
		if c.ti.Compartment() != c.co {
			t.Errorf("%v.Compartment() = %v, want %v", c.ti, c.ti.Compartment(), c.co)
		}
	}
}
