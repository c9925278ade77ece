// Package filter implements the per-session admission filter applied to
// every candidate record before it reaches the ledger.
//
// A Spec maps field names to an admission predicate and/or a value
// transform. Predicates are evaluated in schema order and the first failing
// predicate short-circuits rejection; transforms run only on fields whose
// predicate passed. Rejection is a counted outcome, never an error.
package filter

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/measgo/record"
	"github.com/hupe1980/measgo/schema"
)

// Predicate decides whether a field value is admissible.
type Predicate func(v record.Value) bool

// Transform rewrites a field value after its predicate passed.
type Transform func(v record.Value) record.Value

// Rule binds a predicate and/or transform to a schema field.
type Rule struct {
	Field     string
	Predicate Predicate
	Transform Transform
}

// Spec is the session filter: one optional rule per schema field,
// configured once at session start. Safe for concurrent use.
type Spec struct {
	schema    *schema.Schema
	rules     []Rule // indexed by schema position; zero Rule = no-op
	rejected  atomic.Uint64
	haveRules bool
}

// New creates a filter Spec for the given schema. Rules naming fields not
// present in the schema are an error; a nil rule set admits everything.
func New(s *schema.Schema, rules ...Rule) (*Spec, error) {
	if s == nil {
		return nil, fmt.Errorf("filter: schema is nil")
	}

	spec := &Spec{
		schema: s,
		rules:  make([]Rule, s.Len()),
	}

	for _, r := range rules {
		i := s.Index(r.Field)
		if i < 0 {
			return nil, fmt.Errorf("filter: unknown field %q", r.Field)
		}
		if spec.rules[i].Predicate != nil || spec.rules[i].Transform != nil {
			return nil, fmt.Errorf("filter: duplicate rule for field %q", r.Field)
		}
		spec.rules[i] = r
		spec.haveRules = true
	}

	return spec, nil
}

// Apply evaluates the spec against a candidate record.
//
// On admission it returns the (possibly transformed) record and true. On
// rejection it returns the zero record and false, and increments the
// rejection counter. The input record is never mutated.
func (s *Spec) Apply(rec record.Record) (record.Record, bool) {
	if !s.haveRules {
		return rec, true
	}

	var out []record.Value

	for i, rule := range s.rules {
		if rule.Predicate != nil && !rule.Predicate(rec.Values[i]) {
			s.rejected.Add(1)
			return record.Record{}, false
		}
		if rule.Transform != nil {
			if out == nil {
				out = make([]record.Value, len(rec.Values))
				copy(out, rec.Values)
			}
			out[i] = rule.Transform(out[i])
		}
	}

	if out == nil {
		return rec, true
	}
	return rec.WithValues(out), true
}

// Rejections returns the number of records rejected so far.
func (s *Spec) Rejections() uint64 {
	return s.rejected.Load()
}
