package study

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/dstream/dstream"
)

// SchemaError describes an input table that cannot be used because a
// required column is missing or holds the wrong type.  Loaders return
// it before reading any rows.
type SchemaError struct {
	Table  string
	Column string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: column %q %s", e.Table, e.Column, e.Detail)
}

// Animal holds the per-animal study metadata after normalization to
// one record per animal.
type Animal struct {

	// Animal identifier, unique within the joined studies.
	ID string

	// Study or cohort identifier.
	StudyID string

	// Log10 CFU of the challenge dose; NaN when not recorded.
	Log10Dose float64

	// Protection status after challenge.
	Outcome Outcome

	// Granulomas found at challenge; NaN when not recorded.
	Granulomas float64

	// Dose bin assigned by LabelCohorts; the zero value is
	// unassigned.
	Bin DoseBin
}

// Measurement is one immune response observation in long form.
type Measurement struct {
	Animal   string
	Key      string
	ShortKey string
	Time     TimePoint
	Tissue   Tissue
	Antigen  string
	Unit     Unit

	// Value is NaN when the measurement is missing.
	Value float64
}

// GeneCount is one normalized expression value for one gene in one
// sample.
type GeneCount struct {
	Gene   string
	Sample SampleID
	Count  float64
}

// GeneModule assigns a gene to an expression module.  A gene may
// belong to several modules.
type GeneModule struct {
	Gene   string
	Module string
}

// colIndex resolves the positions of the named columns in data,
// returning a SchemaError for the first one that is absent.
func colIndex(data dstream.Dstream, table string, names ...string) ([]int, error) {

	pos := make([]int, len(names))
	for i := range pos {
		pos[i] = -1
	}

	for k, na := range data.Names() {
		for i, want := range names {
			if na == want {
				pos[i] = k
			}
		}
	}

	for i, p := range pos {
		if p == -1 {
			return nil, &SchemaError{Table: table, Column: names[i], Detail: "is missing"}
		}
	}

	return pos, nil
}

// optCol resolves the position of an optional column, returning -1
// when it is absent.
func optCol(data dstream.Dstream, name string) int {
	for k, na := range data.Names() {
		if na == name {
			return k
		}
	}
	return -1
}

// stringCol returns the named column of the current chunk.
func stringCol(data dstream.Dstream, table, name string, pos int) ([]string, error) {
	v, ok := data.GetPos(pos).([]string)
	if !ok {
		return nil, &SchemaError{Table: table, Column: name, Detail: "is not a string column"}
	}
	return v, nil
}

// floatCol returns the named column of the current chunk.
func floatCol(data dstream.Dstream, table, name string, pos int) ([]float64, error) {
	v, ok := data.GetPos(pos).([]float64)
	if !ok {
		return nil, &SchemaError{Table: table, Column: name, Detail: "is not a numeric column"}
	}
	return v, nil
}

// sameValue reports whether two possibly missing values agree, with
// NaN standing for missing on both sides.
func sameValue(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// LoadAnimals reads the animal metadata table and normalizes it to
// one record per animal.  The raw export holds one row per animal and
// visit; fields that must be constant per animal are checked across
// its rows, and the outcome and granuloma count may be recorded on
// any subset of them.
//
// Required columns: animal_id, study, log10_dose, visit.  Optional
// columns: outcome, granulomas.
func LoadAnimals(data dstream.Dstream) ([]Animal, error) {

	pos, err := colIndex(data, "animals", "animal_id", "study", "log10_dose", "visit")
	if err != nil {
		return nil, err
	}
	outPos := optCol(data, "outcome")
	granPos := optCol(data, "granulomas")

	var animals []Animal
	index := make(map[string]int)

	data.Reset()
	for data.Next() {

		ids, err := stringCol(data, "animals", "animal_id", pos[0])
		if err != nil {
			return nil, err
		}
		studies, err := stringCol(data, "animals", "study", pos[1])
		if err != nil {
			return nil, err
		}
		doses, err := floatCol(data, "animals", "log10_dose", pos[2])
		if err != nil {
			return nil, err
		}
		if _, err := stringCol(data, "animals", "visit", pos[3]); err != nil {
			return nil, err
		}

		var outcomes []string
		if outPos >= 0 {
			if outcomes, err = stringCol(data, "animals", "outcome", outPos); err != nil {
				return nil, err
			}
		}
		var grans []float64
		if granPos >= 0 {
			if grans, err = floatCol(data, "animals", "granulomas", granPos); err != nil {
				return nil, err
			}
		}

		for i, id := range ids {

			oc := OutcomeUnknown
			if outcomes != nil {
				oc = ParseOutcome(outcomes[i])
			}
			gr := math.NaN()
			if grans != nil {
				gr = grans[i]
			}

			j, seen := index[id]
			if !seen {
				index[id] = len(animals)
				animals = append(animals, Animal{
					ID:         id,
					StudyID:    studies[i],
					Log10Dose:  doses[i],
					Outcome:    oc,
					Granulomas: gr,
				})
				continue
			}

			// Repeat visit rows must agree with what is already
			// known about the animal.
			a := &animals[j]
			if a.StudyID != studies[i] {
				return nil, fmt.Errorf("animals: %q listed in studies %q and %q",
					id, a.StudyID, studies[i])
			}
			if !sameValue(a.Log10Dose, doses[i]) {
				return nil, fmt.Errorf("animals: %q has conflicting doses %v and %v",
					id, a.Log10Dose, doses[i])
			}
			switch {
			case a.Outcome == OutcomeUnknown:
				a.Outcome = oc
			case oc != OutcomeUnknown && oc != a.Outcome:
				return nil, fmt.Errorf("animals: %q has conflicting outcomes", id)
			}
			switch {
			case math.IsNaN(a.Granulomas):
				a.Granulomas = gr
			case !sameValue(a.Granulomas, gr) && !math.IsNaN(gr):
				return nil, fmt.Errorf("animals: %q has conflicting granuloma counts", id)
			}
		}
	}

	return animals, nil
}

// LoadResponses reads the immune response table in long form.  Full
// keys must carry a time point suffix consistent with the short_key
// and time columns, and the tissue and unit of a short key must be
// constant across its rows.  Row order is preserved.
//
// Required columns: animal_id, key, short_key, time, tissue, antigen,
// unit, value.
func LoadResponses(data dstream.Dstream) ([]Measurement, error) {

	pos, err := colIndex(data, "responses",
		"animal_id", "key", "short_key", "time", "tissue", "antigen", "unit", "value")
	if err != nil {
		return nil, err
	}

	var rows []Measurement
	desc := make(map[string]Descriptor)

	data.Reset()
	for data.Next() {

		var cols [7][]string
		for k, name := range []string{"animal_id", "key", "short_key", "time", "tissue", "antigen", "unit"} {
			if cols[k], err = stringCol(data, "responses", name, pos[k]); err != nil {
				return nil, err
			}
		}
		values, err := floatCol(data, "responses", "value", pos[7])
		if err != nil {
			return nil, err
		}

		for i := range values {

			tp, ok := ParseTimePoint(cols[3][i])
			if !ok {
				return nil, fmt.Errorf("responses: unrecognized time point %q", cols[3][i])
			}
			ti, ok := ParseTissue(cols[4][i])
			if !ok {
				return nil, fmt.Errorf("responses: unrecognized tissue %q", cols[4][i])
			}
			un, ok := ParseUnit(cols[6][i])
			if !ok {
				return nil, fmt.Errorf("responses: unrecognized unit %q", cols[6][i])
			}

			key, short := cols[1][i], cols[2][i]
			ks, ktp, ok := SplitKey(key)
			if !ok || ks != short || ktp != tp {
				return nil, fmt.Errorf("responses: key %q inconsistent with short key %q at time %q",
					key, short, cols[3][i])
			}

			d := Descriptor{Tissue: ti, Unit: un, ShortKey: short}
			if d0, seen := desc[short]; !seen {
				desc[short] = d
			} else if d0 != d {
				return nil, fmt.Errorf("responses: short key %q has varying tissue or unit", short)
			}

			rows = append(rows, Measurement{
				Animal:   cols[0][i],
				Key:      key,
				ShortKey: short,
				Time:     tp,
				Tissue:   ti,
				Antigen:  cols[5][i],
				Unit:     un,
				Value:    values[i],
			})
		}
	}

	return rows, nil
}

// CheckKeys returns the distinct short keys that do not follow the
// variable naming convention, or whose parsed tissue or unit
// contradicts the table's own columns.  Such keys are usable as
// opaque strings, so they are reported rather than rejected.
func CheckKeys(rows []Measurement) []string {

	bad := make(map[string]bool)
	for _, r := range rows {
		if bad[r.ShortKey] {
			continue
		}
		vk, ok := ParseVariableKey(r.ShortKey)
		if !ok || vk.Tissue != r.Tissue || vk.Unit != r.Unit {
			bad[r.ShortKey] = true
		}
	}

	keys := make([]string, 0, len(bad))
	for k := range bad {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// LoadGeneCounts reads the per-sample gene expression table.  Sample
// labels must parse as "<animal>_<timepoint>".
//
// Required columns: gene, sample, count.
func LoadGeneCounts(data dstream.Dstream) ([]GeneCount, error) {

	pos, err := colIndex(data, "gene_counts", "gene", "sample", "count")
	if err != nil {
		return nil, err
	}

	var rows []GeneCount

	data.Reset()
	for data.Next() {

		genes, err := stringCol(data, "gene_counts", "gene", pos[0])
		if err != nil {
			return nil, err
		}
		samples, err := stringCol(data, "gene_counts", "sample", pos[1])
		if err != nil {
			return nil, err
		}
		counts, err := floatCol(data, "gene_counts", "count", pos[2])
		if err != nil {
			return nil, err
		}

		for i := range genes {
			sid, ok := ParseSampleID(samples[i])
			if !ok {
				return nil, fmt.Errorf("gene_counts: malformed sample label %q", samples[i])
			}
			rows = append(rows, GeneCount{Gene: genes[i], Sample: sid, Count: counts[i]})
		}
	}

	return rows, nil
}

// LoadGeneModules reads the gene to module assignment table.
// Duplicate assignments collapse to one.
//
// Required columns: gene, module.
func LoadGeneModules(data dstream.Dstream) ([]GeneModule, error) {

	pos, err := colIndex(data, "gene_modules", "gene", "module")
	if err != nil {
		return nil, err
	}

	var rows []GeneModule
	seen := make(map[GeneModule]bool)

	data.Reset()
	for data.Next() {

		genes, err := stringCol(data, "gene_modules", "gene", pos[0])
		if err != nil {
			return nil, err
		}
		modules, err := stringCol(data, "gene_modules", "module", pos[1])
		if err != nil {
			return nil, err
		}

		for i := range genes {
			gm := GeneModule{Gene: genes[i], Module: modules[i]}
			if !seen[gm] {
				seen[gm] = true
				rows = append(rows, gm)
			}
		}
	}

	return rows, nil
}
