package domain

import "time"

// WeeklySummary is the immutable per-(user, week) snapshot produced by
// summary generation. The (UserID, WeekStart) pair is its natural key and is
// unique: generation never overwrites an existing summary.
type WeeklySummary struct {
	ID            string
	UserID        string
	WeekStart     time.Time
	TotalKg       float64
	ActivityCount int
	Totals        CategoryTotals
	Highest       *CategoryEmission
	Lowest        *CategoryEmission
	Target        *TargetProgress
	Tip           *Tip
	GeneratedAt   time.Time
}

// BuildSummary assembles a WeeklySummary from the target week's activities,
// the preceding week's grand total, and the user's configured target. The
// caller is responsible for the idempotency and no-activities checks.
func BuildSummary(userID string, weekStart time.Time, week CategoryTotals, previousWeekKg float64, previousAvailable bool, target *ReductionTarget, shareThreshold float64, messages TipMessages, now time.Time) WeeklySummary {
	summary := WeeklySummary{
		UserID:        userID,
		WeekStart:     weekStart,
		TotalKg:       week.GrandTotalKg,
		ActivityCount: week.ActivityCount,
		Totals:        week,
		Target:        ScoreTarget(target, week.GrandTotalKg, previousWeekKg, previousAvailable),
		Tip:           SelectTip(week, shareThreshold, messages),
		GeneratedAt:   now,
	}
	if highest, ok := week.HighestCategory(); ok {
		summary.Highest = &highest
	}
	if lowest, ok := week.LowestCategory(); ok {
		summary.Lowest = &lowest
	}
	return summary
}
