// Package resolver matches map features to the jurisdiction keys present in
// the aggregated data.
//
// Terse codes are tried before full names: codes are unambiguous, full names
// need normalising and could otherwise match the wrong jurisdiction.
package resolver

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CandidateProperties are the feature properties tried as keys, in order.
var CandidateProperties = []string{
	"postal", "postcode", "STE_CODE", "STATE_ABBR", "state_abbr",
	"STATE", "STATE_NAME", "NAME", "name",
}

// fullNameProperties supply the full jurisdiction name, first non-empty wins.
var fullNameProperties = []string{"STATE_NAME", "STATE", "NAME", "name"}

// FullNameToCode maps Australian state and territory names to their codes.
var FullNameToCode = map[string]string{
	"New South Wales":              "NSW",
	"Victoria":                     "VIC",
	"Queensland":                   "QLD",
	"Western Australia":            "WA",
	"South Australia":              "SA",
	"Tasmania":                     "TAS",
	"Northern Territory":           "NT",
	"Australian Capital Territory": "ACT",
}

type Resolver struct {
	known map[string]bool
	keys  []string
}

// New builds a resolver over the known keys; order decides case-insensitive ties.
func New(known []string) *Resolver {
	r := &Resolver{known: make(map[string]bool, len(known))}
	for _, k := range known {
		if r.known[k] {
			continue
		}
		r.known[k] = true
		r.keys = append(r.keys, k)
	}
	return r
}

// Resolve is a one-shot New(known).Resolve(props).
func Resolve(props map[string]interface{}, known []string) (string, bool) {
	return New(known).Resolve(props)
}

// Resolve returns the known key a feature represents, or false when nothing matches.
func (r *Resolver) Resolve(props map[string]interface{}) (string, bool) {
	candidates := make([]string, 0, len(CandidateProperties))
	for _, name := range CandidateProperties {
		if v, ok := Property(props, name); ok {
			candidates = append(candidates, v)
		}
	}
	for _, c := range candidates {
		if r.known[c] {
			return c, true
		}
	}
	for _, c := range candidates {
		if t := strings.TrimSpace(c); r.known[t] {
			return t, true
		}
	}

	full := FullName(props)
	if full == "" {
		return "", false
	}
	if code, ok := FullNameToCode[full]; ok && r.known[code] {
		return code, true
	}
	lower := cases.Lower(language.Und)
	want := lower.String(full)
	for _, k := range r.keys {
		if lower.String(k) == want {
			return k, true
		}
	}
	return "", false
}

// FullName returns the first non-empty full-name property.
func FullName(props map[string]interface{}) string {
	for _, name := range fullNameProperties {
		if v, ok := Property(props, name); ok {
			return v
		}
	}
	return ""
}

// Property stringifies a feature property. Missing, null, empty, zero and false
// values count as absent.
func Property(props map[string]interface{}, name string) (string, bool) {
	switch v := props[name].(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), v != 0
	case int64:
		return strconv.FormatInt(v, 10), v != 0
	case bool:
		return "true", v
	}
	return "", false
}
