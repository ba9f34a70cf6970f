package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
)

// summarySnapshot is the JSONB document stored alongside the scalar summary
// columns. It carries everything the engine snapshotted at generation time:
// category totals, highest/lowest markers, the scored target, and the tip.
type summarySnapshot struct {
	Totals  map[domain.Category]float64 `json:"totals"`
	Counts  map[domain.Category]int     `json:"counts"`
	Highest *categoryEmissionDoc        `json:"highest,omitempty"`
	Lowest  *categoryEmissionDoc        `json:"lowest,omitempty"`
	Target  *targetProgressDoc          `json:"target,omitempty"`
	Tip     *tipDoc                     `json:"tip,omitempty"`
}

type categoryEmissionDoc struct {
	Category    domain.Category `json:"category"`
	EmissionsKg float64         `json:"emissions_kg"`
}

type targetProgressDoc struct {
	Type               domain.TargetType `json:"target_type"`
	Value              float64           `json:"target_value"`
	PreviousWeekKg     *float64          `json:"previous_week_kg,omitempty"`
	ReductionAchieved  *float64          `json:"reduction_achieved,omitempty"`
	TargetMet          bool              `json:"target_met"`
	ProgressPercentage *float64          `json:"progress_percentage,omitempty"`
}

type tipDoc struct {
	Category domain.Category    `json:"category"`
	Polarity domain.TipPolarity `json:"polarity"`
	Message  string             `json:"message"`
}

func newSummarySnapshot(summary domain.WeeklySummary) summarySnapshot {
	doc := summarySnapshot{
		Totals: summary.Totals.Totals,
		Counts: summary.Totals.Counts,
	}
	if summary.Highest != nil {
		doc.Highest = &categoryEmissionDoc{Category: summary.Highest.Category, EmissionsKg: summary.Highest.EmissionsKg}
	}
	if summary.Lowest != nil {
		doc.Lowest = &categoryEmissionDoc{Category: summary.Lowest.Category, EmissionsKg: summary.Lowest.EmissionsKg}
	}
	if summary.Target != nil {
		doc.Target = &targetProgressDoc{
			Type:               summary.Target.Type,
			Value:              summary.Target.Value,
			PreviousWeekKg:     summary.Target.PreviousWeekKg,
			ReductionAchieved:  summary.Target.ReductionAchieved,
			TargetMet:          summary.Target.TargetMet,
			ProgressPercentage: summary.Target.ProgressPercentage,
		}
	}
	if summary.Tip != nil {
		doc.Tip = &tipDoc{Category: summary.Tip.Category, Polarity: summary.Tip.Polarity, Message: summary.Tip.Message}
	}
	return doc
}

func (doc summarySnapshot) apply(summary *domain.WeeklySummary) {
	totals := domain.NewCategoryTotals()
	for category, kg := range doc.Totals {
		totals.Totals[category] = kg
		totals.GrandTotalKg += kg
	}
	for category, count := range doc.Counts {
		totals.Counts[category] = count
		totals.ActivityCount += count
	}
	summary.Totals = totals

	if doc.Highest != nil {
		summary.Highest = &domain.CategoryEmission{Category: doc.Highest.Category, EmissionsKg: doc.Highest.EmissionsKg}
	}
	if doc.Lowest != nil {
		summary.Lowest = &domain.CategoryEmission{Category: doc.Lowest.Category, EmissionsKg: doc.Lowest.EmissionsKg}
	}
	if doc.Target != nil {
		summary.Target = &domain.TargetProgress{
			Type:               doc.Target.Type,
			Value:              doc.Target.Value,
			PreviousWeekKg:     doc.Target.PreviousWeekKg,
			ReductionAchieved:  doc.Target.ReductionAchieved,
			TargetMet:          doc.Target.TargetMet,
			ProgressPercentage: doc.Target.ProgressPercentage,
		}
	}
	if doc.Tip != nil {
		summary.Tip = &domain.Tip{Category: doc.Tip.Category, Polarity: doc.Tip.Polarity, Message: doc.Tip.Message}
	}
}

func scanSummary(row pgx.Row) (*domain.WeeklySummary, error) {
	var summary domain.WeeklySummary
	var snapshot []byte
	if err := row.Scan(&summary.ID, &summary.UserID, &summary.WeekStart, &summary.TotalKg, &summary.ActivityCount, &snapshot, &summary.GeneratedAt); err != nil {
		return nil, err
	}

	var doc summarySnapshot
	if err := json.Unmarshal(snapshot, &doc); err != nil {
		return nil, err
	}
	doc.apply(&summary)

	summary.WeekStart = summary.WeekStart.UTC()
	return &summary, nil
}
