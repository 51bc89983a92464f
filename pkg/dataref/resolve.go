package dataref

import (
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/statsbudsjett/statsbudsjett/pkg/numfmt"
)

// Resolve evaluates ref against year and returns the numeric leaf it names.
// Any failure, including a malformed reference, yields (0, false).
func Resolve(ref string, year *budget.BudgetYear) (float64, bool) {
	path, err := Parse(ref)
	if err != nil {
		log.Debugf("unresolvable data reference: %v", err)
		return 0, false
	}
	return Evaluate(path, year)
}

// Evaluate walks a parsed path through the field tables of the budget tree.
func Evaluate(path Path, year *budget.BudgetYear) (float64, bool) {
	if year == nil || len(path) == 0 {
		return 0, false
	}
	var current any = year
	for _, seg := range path {
		if current == nil {
			return 0, false
		}
		switch s := seg.(type) {
		case FieldSegment:
			record, ok := current.(budget.Record)
			if !ok {
				return 0, false
			}
			value, ok := record.Lookup(s.Name)
			if !ok {
				return 0, false
			}
			current = value
		case FilterSegment:
			list, ok := current.([]budget.Record)
			if !ok {
				return 0, false
			}
			current = first(list, s)
		}
	}
	return number(current)
}

// first returns the first element whose key equals the filter value, or nil.
func first(list []budget.Record, filter FilterSegment) any {
	for _, item := range list {
		value, ok := item.Lookup(filter.Key)
		if ok && matches(value, filter.Value) {
			return item
		}
	}
	return nil
}

func matches(value any, want FilterValue) bool {
	switch v := value.(type) {
	case int64:
		return want.IsNumber && float64(v) == want.Number
	case float64:
		return want.IsNumber && v == want.Number
	case string:
		return !want.IsNumber && v == want.Text
	}
	return false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Format resolves ref and renders it as a kroner amount.
func Format(ref string, year *budget.BudgetYear) (string, bool) {
	value, ok := Resolve(ref, year)
	if !ok {
		return "", false
	}
	return numfmt.Amount(value), true
}
