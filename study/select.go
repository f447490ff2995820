package study

import (
	"errors"
	"fmt"
	"sort"
)

// MatchMode selects how a requested variable identifier is matched
// against measurement keys.
type MatchMode int

// MatchKey matches the full variable key exactly.  MatchShortKey
// matches the short key, gathering the variable at every time point.
const (
	MatchKey MatchMode = iota
	MatchShortKey
)

// CumulativeRule states how records holding cumulative net-AUC
// summaries are treated when selecting by short key.  There is no
// default: short key selection fails unless the caller chooses.
type CumulativeRule int

// CumulativeExclude keeps only single-visit records; CumulativeOnly
// keeps only net-AUC summary records.
const (
	cumulativeUnset CumulativeRule = iota
	CumulativeExclude
	CumulativeOnly
)

// ErrCumulativeRuleRequired is returned by Select when matching a
// short key without an explicit cumulative rule.
var ErrCumulativeRuleRequired = errors.New(
	"study: selecting by short key requires a cumulative rule")

// AmbiguousVariableError reports that an animal contributed more than
// one measurement for the same variable key.
type AmbiguousVariableError struct {
	Ident  string
	Animal string
	Key    string
}

func (e *AmbiguousVariableError) Error() string {
	return fmt.Sprintf("study: variable %q is ambiguous: animal %q has multiple rows for key %q",
		e.Ident, e.Animal, e.Key)
}

// Select returns the measurements of one variable.  With MatchKey the
// identifier names a full key and the cumulative rule is ignored,
// since a full key is either a single visit or a net-AUC summary on
// its own.  With MatchShortKey the identifier names a short key and
// the rule decides whether the visit series or the cumulative summary
// is wanted.
//
// An animal appearing twice for the same full key makes the variable
// ambiguous and Select returns an AmbiguousVariableError.  A variable
// with no measurements yields an empty, error-free result.  The
// output is sorted by animal, time and key, so repeated selections
// are identical.
func Select(rows []Measurement, ident string, mode MatchMode, rule CumulativeRule) ([]Measurement, error) {

	switch mode {
	case MatchKey:
	case MatchShortKey:
		if rule != CumulativeExclude && rule != CumulativeOnly {
			return nil, ErrCumulativeRuleRequired
		}
	default:
		panic("study: invalid match mode")
	}

	var out []Measurement
	for _, r := range rows {
		switch mode {
		case MatchKey:
			if r.Key != ident {
				continue
			}
		case MatchShortKey:
			if r.ShortKey != ident {
				continue
			}
			if rule == CumulativeExclude && r.Time == NetAUC {
				continue
			}
			if rule == CumulativeOnly && r.Time != NetAUC {
				continue
			}
		}
		out = append(out, r)
	}

	type ak struct {
		animal, key string
	}
	seen := make(map[ak]bool)
	for _, r := range out {
		k := ak{r.Animal, r.Key}
		if seen[k] {
			return nil, &AmbiguousVariableError{Ident: ident, Animal: r.Animal, Key: r.Key}
		}
		seen[k] = true
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Animal != out[j].Animal {
			return out[i].Animal < out[j].Animal
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Key < out[j].Key
	})

	return out, nil
}

// Keys returns the distinct full variable keys among rows, sorted.
func Keys(rows []Measurement) []string {

	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		if !seen[r.Key] {
			seen[r.Key] = true
			keys = append(keys, r.Key)
		}
	}
	sort.Strings(keys)

	return keys
}

// ShortKeys returns the distinct short keys among rows, sorted.
func ShortKeys(rows []Measurement) []string {

	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		if !seen[r.ShortKey] {
			seen[r.ShortKey] = true
			keys = append(keys, r.ShortKey)
		}
	}
	sort.Strings(keys)

	return keys
}
