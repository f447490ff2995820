package study

import (
	"fmt"
	"strings"
)

// TimePoint identifies a scheduled study visit.  Time points are
// ordered chronologically, with the cumulative NetAUC pseudo-point
// ordered after every visit.
type TimePoint int

// Pre is the baseline visit.  NetAUC marks records that hold a net
// area-under-curve summary over the whole visit series rather than a
// single visit.
const (
	TimeInvalid TimePoint = iota
	Pre
	Day2
	Week2
	Week4
	Week8
	Week12
	NetAUC
)

// Day returns the study day offset of a visit, and false when tp does
// not denote a single visit.
func (tp TimePoint) Day() (int, bool) {
	switch tp {
	case Pre:
		return 0, true
	case Day2:
		return 2, true
	case Week2:
		return 14, true
	case Week4:
		return 28, true
	case Week8:
		return 56, true
	case Week12:
		return 84, true
	}
	return 0, false
}

// String returns the short label of the time point as written in the
// study exports.
func (tp TimePoint) String() string {
	switch tp {
	case Pre:
		return "pre"
	case Day2:
		return "d2"
	case Week2:
		return "wk2"
	case Week4:
		return "wk4"
	case Week8:
		return "wk8"
	case Week12:
		return "wk12"
	case NetAUC:
		return "nAUC"
	}
	return "invalid"
}

// ParseTimePoint maps the time point vocabulary used across the study
// exports to a TimePoint.  Bare numerals are week numbers.  The second
// return value is false for unrecognized input.
func ParseTimePoint(s string) (TimePoint, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre", "baseline", "wk0", "week0", "0":
		return Pre, true
	case "d2", "day2":
		return Day2, true
	case "wk2", "week2", "2":
		return Week2, true
	case "wk4", "week4", "4":
		return Week4, true
	case "wk8", "week8", "8":
		return Week8, true
	case "wk12", "week12", "12":
		return Week12, true
	case "nauc", "net_auc":
		return NetAUC, true
	}
	return TimeInvalid, false
}

// Tissue identifies the sample source of a measurement.
type Tissue int

// The tissues appearing in the studies.  WholeBlood is written "WB"
// in the exports.
const (
	TissueInvalid Tissue = iota
	BAL
	Lung
	PBMC
	WholeBlood
)

// String returns the tissue label as written in the study exports.
func (t Tissue) String() string {
	switch t {
	case BAL:
		return "BAL"
	case Lung:
		return "Lung"
	case PBMC:
		return "PBMC"
	case WholeBlood:
		return "WB"
	}
	return "invalid"
}

// ParseTissue maps a tissue label to a Tissue.  The second return
// value is false for unrecognized input.
func ParseTissue(s string) (Tissue, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bal":
		return BAL, true
	case "lung":
		return Lung, true
	case "pbmc":
		return PBMC, true
	case "wb", "whole blood", "wholeblood":
		return WholeBlood, true
	}
	return TissueInvalid, false
}

// Compartment groups tissues into airway and peripheral sources.
type Compartment int

const (
	CompartmentInvalid Compartment = iota
	Airway
	Peripheral
)

// String returns a label for the compartment.
func (c Compartment) String() string {
	switch c {
	case Airway:
		return "airway"
	case Peripheral:
		return "peripheral"
	}
	return "invalid"
}

// Compartment returns the compartment that a tissue samples.
func (t Tissue) Compartment() Compartment {
	switch t {
	case BAL, Lung:
		return Airway
	case PBMC, WholeBlood:
		return Peripheral
	}
	return CompartmentInvalid
}

// Unit identifies the measurement scale of a response variable.
type Unit int

// Count measurements are absolute cell counts, written "#" in the
// exports; Percent measurements are frequencies among the parent
// population, written "%".
const (
	UnitInvalid Unit = iota
	Count
	Percent
)

// String returns the unit symbol as written in the study exports.
func (u Unit) String() string {
	switch u {
	case Count:
		return "#"
	case Percent:
		return "%"
	}
	return "invalid"
}

// ParseUnit maps a unit label to a Unit.  The second return value is
// false for unrecognized input.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "#", "count", "counts":
		return Count, true
	case "%", "percent", "pct":
		return Percent, true
	}
	return UnitInvalid, false
}

// Outcome is the protection status of an animal after challenge.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	NotProtected
	Protected
)

// String returns a label for the outcome.
func (o Outcome) String() string {
	switch o {
	case Protected:
		return "protected"
	case NotProtected:
		return "not protected"
	}
	return "unknown"
}

// ParseOutcome maps an outcome label to an Outcome.  Empty and
// NA-like values map to OutcomeUnknown.
func ParseOutcome(s string) Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "protected", "yes", "y", "1", "true":
		return Protected
	case "not protected", "notprotected", "unprotected", "no", "n", "0", "false":
		return NotProtected
	}
	return OutcomeUnknown
}

// SampleID identifies one profiled sample as an animal at a visit.
// Sample labels in the expression exports take the form
// "<animal>_<timepoint>", e.g. "dmgj8_wk2".
type SampleID struct {
	Animal string
	Time   TimePoint
}

// ParseSampleID splits a sample label into its animal and visit
// parts.  The split is at the last underscore, so animal identifiers
// may themselves contain underscores.
func ParseSampleID(s string) (SampleID, bool) {
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return SampleID{}, false
	}
	tp, ok := ParseTimePoint(s[i+1:])
	if !ok {
		return SampleID{}, false
	}
	return SampleID{Animal: s[:i], Time: tp}, true
}

// String returns the sample label.
func (s SampleID) String() string {
	return s.Animal + "_" + s.Time.String()
}

// Marker is one cytokine gate in a Boolean subset combination, e.g.
// IFNg+ or IL17-.
type Marker struct {
	Name     string
	Positive bool
}

// String returns the gate as written in variable keys.
func (m Marker) String() string {
	if m.Positive {
		return m.Name + "+"
	}
	return m.Name + "-"
}

// VariableKey is the parsed form of an immune response variable name.
// Short keys follow the convention "SUBSET/GATES (TISSUE) UNIT", for
// example "CD4/IFNg+IL2+TNF+ (BAL) %".  Full keys append the visit,
// e.g. "CD4/IFNg+IL2+TNF+ (BAL) %_wk4".
type VariableKey struct {
	Subset  string
	Markers []Marker
	Tissue  Tissue
	Unit    Unit
}

// String returns the short key form of the variable.
func (vk VariableKey) String() string {
	var b strings.Builder
	b.WriteString(vk.Subset)
	b.WriteString("/")
	for _, m := range vk.Markers {
		b.WriteString(m.String())
	}
	fmt.Fprintf(&b, " (%s) %s", vk.Tissue, vk.Unit)
	return b.String()
}

// ParseVariableKey parses the short key naming convention.  The
// second return value is false when the key does not follow it; such
// keys remain usable as opaque strings.
func ParseVariableKey(short string) (VariableKey, bool) {

	var vk VariableKey

	i := strings.Index(short, "/")
	if i <= 0 {
		return vk, false
	}
	vk.Subset = short[:i]
	rest := short[i+1:]

	j := strings.Index(rest, " (")
	k := strings.Index(rest, ") ")
	if j <= 0 || k <= j {
		return vk, false
	}

	mk, ok := parseMarkers(rest[:j])
	if !ok {
		return vk, false
	}
	vk.Markers = mk

	t, ok := ParseTissue(rest[j+2 : k])
	if !ok {
		return vk, false
	}
	vk.Tissue = t

	u, ok := ParseUnit(rest[k+2:])
	if !ok {
		return vk, false
	}
	vk.Unit = u

	return vk, true
}

// parseMarkers parses a run of gates such as "IFNg+IL2-TNF+".
func parseMarkers(s string) ([]Marker, bool) {

	var mk []Marker
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '+' && s[i] != '-' {
			continue
		}
		if i == start {
			return nil, false
		}
		mk = append(mk, Marker{Name: s[start:i], Positive: s[i] == '+'})
		start = i + 1
	}
	if start != len(s) || len(mk) == 0 {
		return nil, false
	}

	return mk, true
}

// SplitKey separates a full variable key into its short key and time
// point parts.  The second return value is false when the key carries
// no recognizable time point suffix.
func SplitKey(key string) (string, TimePoint, bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", TimeInvalid, false
	}
	tp, ok := ParseTimePoint(key[i+1:])
	if !ok {
		return "", TimeInvalid, false
	}
	return key[:i], tp, true
}

// JoinKey builds a full variable key from a short key and a time
// point.
func JoinKey(short string, tp TimePoint) string {
	return short + "_" + tp.String()
}
