package budget

import "math"

// ChangeRecord compares an amount with the same node in last year's adopted
// budget. Percent is nil when the baseline is zero.
type ChangeRecord struct {
	Current  int64    `json:"belop"`
	Baseline int64    `json:"saldert_forrige"`
	Absolute *int64   `json:"endring_absolut"`
	Percent  *float64 `json:"endring_prosent"`
}

func NewChangeRecord(current, baseline int64) *ChangeRecord {
	absolute := current - baseline
	record := &ChangeRecord{
		Current:  current,
		Baseline: baseline,
		Absolute: &absolute,
	}
	if baseline != 0 {
		percent := roundToTenth(float64(absolute) / math.Abs(float64(baseline)) * 100)
		record.Percent = &percent
	}
	return record
}

// ChangePart is one child contributing to a rolled-up change record.
type ChangePart struct {
	Amount int64
	Change *ChangeRecord
}

// AggregateChange rolls the change records of sibling nodes up one level.
// The current amount is the sum of all parts and the baseline the sum of the
// baselines that exist. Percentages are recomputed, never averaged. Returns
// nil when no part has a baseline.
func AggregateChange(parts []ChangePart) *ChangeRecord {
	var current, baseline int64
	withBaseline := 0
	for _, part := range parts {
		current += part.Amount
		if part.Change != nil {
			baseline += part.Change.Baseline
			withBaseline++
		}
	}
	if withBaseline == 0 {
		return nil
	}
	return NewChangeRecord(current, baseline)
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
