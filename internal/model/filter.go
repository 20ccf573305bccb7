package model

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DateInputFormat is the accepted wire format for date_from / date_to.
const DateInputFormat = "2006-01-02"

// Query parameter names recognized by the filter form.
const (
	ParamDateFrom    = "date_from"
	ParamDateTo      = "date_to"
	FieldParamPrefix = "field-"
)

// FieldPredicate narrows to submissions whose named field contains Value
// (case-insensitive substring).
type FieldPredicate struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FilterCriteria is the transient value object built from the admin's query.
// Nil date pointers mean unbounded on that side; both bounds are inclusive
// of the whole named day. DateFrom after DateTo matches nothing, which is a
// valid (empty) result, not an error.
type FilterCriteria struct {
	DateFrom *time.Time       `json:"date_from,omitempty"`
	DateTo   *time.Time       `json:"date_to,omitempty"`
	Fields   []FieldPredicate `json:"fields,omitempty"`
}

// Empty reports whether the criteria constrain nothing.
func (c FilterCriteria) Empty() bool {
	return c.DateFrom == nil && c.DateTo == nil && len(c.Fields) == 0
}

// Fingerprint renders the criteria as a canonical string: equal criteria
// always produce equal fingerprints regardless of predicate input order.
// Used as part of export cache keys.
func (c FilterCriteria) Fingerprint() string {
	var b strings.Builder
	b.WriteString("from=")
	if c.DateFrom != nil {
		b.WriteString(c.DateFrom.UTC().Format(DateInputFormat))
	}
	b.WriteString("|to=")
	if c.DateTo != nil {
		b.WriteString(c.DateTo.UTC().Format(DateInputFormat))
	}
	preds := make([]FieldPredicate, len(c.Fields))
	copy(preds, c.Fields)
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Name != preds[j].Name {
			return preds[i].Name < preds[j].Name
		}
		return preds[i].Value < preds[j].Value
	})
	for _, p := range preds {
		fmt.Fprintf(&b, "|f[%s]=%s", p.Name, p.Value)
	}
	return b.String()
}

// FilterProblems maps an input name to a translatable problem id. Problems
// never fail a request; the host renders them next to the filter controls.
type FilterProblems map[string]string

// ParseFilterCriteria builds criteria from the admin's query values.
//
// Dates use DateInputFormat and are interpreted as UTC days. A malformed
// date drops the whole date pair (the listing falls back to date-unfiltered,
// matching the original filter form) and records a problem for the offending
// input. Field predicates come from field-<name> parameters; empty values
// are ignored. Parsing never errors.
func ParseFilterCriteria(values url.Values) (FilterCriteria, FilterProblems) {
	var criteria FilterCriteria
	problems := FilterProblems{}

	datesValid := true
	from, ok := parseDateParam(values, ParamDateFrom, problems)
	datesValid = datesValid && ok
	to, ok := parseDateParam(values, ParamDateTo, problems)
	datesValid = datesValid && ok
	if datesValid {
		criteria.DateFrom = from
		criteria.DateTo = to
	}

	for key, vals := range values {
		name, found := strings.CutPrefix(key, FieldParamPrefix)
		if !found || name == "" {
			continue
		}
		for _, v := range vals {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			criteria.Fields = append(criteria.Fields, FieldPredicate{Name: name, Value: v})
		}
	}
	// url.Values iteration order is undefined; keep predicates stable.
	sort.Slice(criteria.Fields, func(i, j int) bool {
		if criteria.Fields[i].Name != criteria.Fields[j].Name {
			return criteria.Fields[i].Name < criteria.Fields[j].Name
		}
		return criteria.Fields[i].Value < criteria.Fields[j].Value
	})

	if len(problems) == 0 {
		problems = nil
	}
	return criteria, problems
}

func parseDateParam(values url.Values, key string, problems FilterProblems) (*time.Time, bool) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(DateInputFormat, raw, time.UTC)
	if err != nil {
		problems[key] = "filter.invalid_date"
		return nil, false
	}
	return &t, true
}
