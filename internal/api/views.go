package api

import (
	"errors"
	"strings"
	"time"

	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
)

// LogActivityRequest is the payload for POST /v1/activities.
type LogActivityRequest struct {
	Category    string    `json:"category"`
	Label       string    `json:"label"`
	EmissionsKg float64   `json:"emissions_kg"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Validate ensures request correctness.
func (r LogActivityRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if strings.TrimSpace(r.Label) == "" {
		return errors.New("label is required")
	}
	if r.EmissionsKg < 0 {
		return errors.New("emissions_kg must be >= 0")
	}
	if r.OccurredAt.IsZero() {
		return errors.New("occurred_at is required")
	}
	return nil
}

// SetTargetRequest is the payload for PUT /v1/targets.
type SetTargetRequest struct {
	Type  string  `json:"target_type"`
	Value float64 `json:"target_value"`
}

// Validate ensures request correctness.
func (r SetTargetRequest) Validate() error {
	if r.Type != string(domain.TargetTypePercentage) && r.Type != string(domain.TargetTypeAbsolute) {
		return errors.New(`target_type must be "percentage" or "absolute-kg"`)
	}
	if r.Value <= 0 {
		return errors.New("target_value must be > 0")
	}
	return nil
}

// ActivityView exposes one logged activity.
type ActivityView struct {
	ActivityID  string    `json:"activity_id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Label       string    `json:"label"`
	EmissionsKg float64   `json:"emissions_kg"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items []ActivityView `json:"items"`
}

// CategoryTotalsView exposes per-category totals plus the grand total. Every
// category appears, zero-valued ones included.
type CategoryTotalsView struct {
	Totals        map[string]float64 `json:"totals"`
	Counts        map[string]int     `json:"counts"`
	GrandTotalKg  float64            `json:"grand_total_kg"`
	ActivityCount int                `json:"activity_count"`
}

// CategoryEmissionView pairs a category with its emission value.
type CategoryEmissionView struct {
	Category    string  `json:"category"`
	EmissionsKg float64 `json:"emissions_kg"`
}

// TargetProgressView exposes the scored reduction target on a summary.
type TargetProgressView struct {
	Type               string   `json:"target_type"`
	Value              float64  `json:"target_value"`
	PreviousWeekKg     *float64 `json:"previous_week_kg,omitempty"`
	ReductionAchieved  *float64 `json:"reduction_achieved,omitempty"`
	TargetMet          bool     `json:"target_met"`
	ProgressPercentage *float64 `json:"progress_percentage,omitempty"`
}

// TipView exposes the personalized tip on a summary.
type TipView struct {
	Category string `json:"category"`
	Polarity string `json:"polarity"`
	Message  string `json:"message"`
}

// SummaryView exposes a weekly summary, stored or live. SummaryID is empty
// for live current-week projections.
type SummaryView struct {
	SummaryID     string                `json:"summary_id,omitempty"`
	UserID        string                `json:"user_id"`
	WeekStart     string                `json:"week_start"`
	WeekEnd       string                `json:"week_end"`
	TotalKg       float64               `json:"total_kg"`
	ActivityCount int                   `json:"activity_count"`
	Totals        CategoryTotalsView    `json:"category_totals"`
	Highest       *CategoryEmissionView `json:"highest_emission_category,omitempty"`
	Lowest        *CategoryEmissionView `json:"lowest_emission_category,omitempty"`
	Target        *TargetProgressView   `json:"reduction_target,omitempty"`
	Tip           *TipView              `json:"personalized_tip,omitempty"`
	GeneratedAt   *time.Time            `json:"generated_at,omitempty"`
}

// ListSummariesResponse packages list results.
type ListSummariesResponse struct {
	Items []SummaryView `json:"items"`
}

// TargetView exposes the user's configured reduction target.
type TargetView struct {
	UserID    string    `json:"user_id"`
	Type      string    `json:"target_type"`
	Value     float64   `json:"target_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardEntryView is one ranked leaderboard row.
type LeaderboardEntryView struct {
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	FullName      string  `json:"full_name"`
	TotalKg       float64 `json:"total_kg"`
	ActivityCount int     `json:"activity_count"`
	Rank          int     `json:"rank"`
}

// LeaderboardResponse packages the ranked list.
type LeaderboardResponse struct {
	Items []LeaderboardEntryView `json:"items"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ActivityID:  a.ID,
		UserID:      a.UserID,
		Category:    string(a.Category),
		Label:       a.Label,
		EmissionsKg: a.EmissionsKg,
		OccurredAt:  a.OccurredAt,
		CreatedAt:   a.CreatedAt,
	}
}

func toCategoryTotalsView(totals domain.CategoryTotals) CategoryTotalsView {
	view := CategoryTotalsView{
		Totals:        make(map[string]float64, len(totals.Totals)),
		Counts:        make(map[string]int, len(totals.Counts)),
		GrandTotalKg:  totals.GrandTotalKg,
		ActivityCount: totals.ActivityCount,
	}
	for category, kg := range totals.Totals {
		view.Totals[string(category)] = kg
	}
	for category, count := range totals.Counts {
		view.Counts[string(category)] = count
	}
	return view
}

func toSummaryView(s domain.WeeklySummary) SummaryView {
	view := SummaryView{
		SummaryID:     s.ID,
		UserID:        s.UserID,
		WeekStart:     s.WeekStart.UTC().Format("2006-01-02"),
		WeekEnd:       domain.WeekEnd(s.WeekStart).UTC().Format("2006-01-02"),
		TotalKg:       s.TotalKg,
		ActivityCount: s.ActivityCount,
		Totals:        toCategoryTotalsView(s.Totals),
	}
	if s.Highest != nil {
		view.Highest = &CategoryEmissionView{Category: string(s.Highest.Category), EmissionsKg: s.Highest.EmissionsKg}
	}
	if s.Lowest != nil {
		view.Lowest = &CategoryEmissionView{Category: string(s.Lowest.Category), EmissionsKg: s.Lowest.EmissionsKg}
	}
	if s.Target != nil {
		view.Target = &TargetProgressView{
			Type:               string(s.Target.Type),
			Value:              s.Target.Value,
			PreviousWeekKg:     s.Target.PreviousWeekKg,
			ReductionAchieved:  s.Target.ReductionAchieved,
			TargetMet:          s.Target.TargetMet,
			ProgressPercentage: s.Target.ProgressPercentage,
		}
	}
	if s.Tip != nil {
		view.Tip = &TipView{Category: string(s.Tip.Category), Polarity: string(s.Tip.Polarity), Message: s.Tip.Message}
	}
	if s.ID != "" {
		generatedAt := s.GeneratedAt
		view.GeneratedAt = &generatedAt
	}
	return view
}

func toTargetView(t domain.ReductionTarget) TargetView {
	return TargetView{
		UserID:    t.UserID,
		Type:      string(t.Type),
		Value:     t.Value,
		UpdatedAt: t.UpdatedAt,
	}
}
