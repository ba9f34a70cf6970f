package domain

import "time"

// TargetType distinguishes how a reduction target value is interpreted.
type TargetType string

const (
	// TargetTypePercentage means the target value is a week-over-week
	// percentage decrease.
	TargetTypePercentage TargetType = "percentage"
	// TargetTypeAbsolute means the target value is a week-over-week
	// decrease in kilograms CO2e.
	TargetTypeAbsolute TargetType = "absolute-kg"
)

// ReductionTarget is a user's configured emission reduction goal. A user
// has at most one active target.
type ReductionTarget struct {
	UserID      string
	Type        TargetType
	Value       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TargetProgress is the scored snapshot of a reduction target embedded in a
// weekly summary. Achieved may be negative when emissions went up; only
// ProgressPercentage is clamped, for display.
type TargetProgress struct {
	Type               TargetType
	Value              float64
	PreviousWeekKg     *float64
	ReductionAchieved  *float64
	TargetMet          bool
	ProgressPercentage *float64
}

// ScoreTarget evaluates the target against two consecutive weeks' grand
// totals. previousAvailable is false on a user's first tracked week, in
// which case no reduction can be computed. A nil target yields a nil
// snapshot: "no target" is a valid state, not an error.
func ScoreTarget(target *ReductionTarget, currentWeekKg float64, previousWeekKg float64, previousAvailable bool) *TargetProgress {
	if target == nil {
		return nil
	}

	progress := &TargetProgress{
		Type:  target.Type,
		Value: target.Value,
	}

	if !previousAvailable {
		return progress
	}

	prev := previousWeekKg
	progress.PreviousWeekKg = &prev

	var achieved float64
	switch target.Type {
	case TargetTypePercentage:
		if previousWeekKg == 0 {
			achieved = 0
		} else {
			achieved = (previousWeekKg - currentWeekKg) / previousWeekKg * 100
		}
	default:
		achieved = previousWeekKg - currentWeekKg
	}
	progress.ReductionAchieved = &achieved
	progress.TargetMet = achieved >= target.Value

	if target.Value > 0 {
		ratio := achieved / target.Value * 100
		if ratio > 100 {
			ratio = 100
		}
		if ratio < 0 {
			ratio = 0
		}
		progress.ProgressPercentage = &ratio
	}

	return progress
}
