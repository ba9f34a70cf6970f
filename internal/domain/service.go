// Package domain implements the carbon analytics engine: week bucketing,
// category aggregation, reduction target scoring, tip selection, weekly
// summary generation, and leaderboard ranking.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidWeek means the requested week starts after the current week.
	ErrInvalidWeek = errors.New("cannot generate a summary for a future week")
	// ErrSummaryExists means a summary was already generated for the week.
	ErrSummaryExists = errors.New("summary already exists for this week")
	// ErrNoActivities means the week has nothing to summarize.
	ErrNoActivities = errors.New("no activities recorded for this week")
	// ErrSummaryNotFound is returned when a historical week was never generated.
	ErrSummaryNotFound = errors.New("summary not found")
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
)

// ActivityRepository captures activity persistence operations.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) error
	DeleteActivity(ctx context.Context, userID, activityID string) error
	ListActivities(ctx context.Context, userID string, window TimeWindow) ([]Activity, error)
}

// TargetRepository stores at most one active reduction target per user.
type TargetRepository interface {
	GetReductionTarget(ctx context.Context, userID string) (*ReductionTarget, error)
	UpsertReductionTarget(ctx context.Context, target ReductionTarget) error
}

// SummaryRepository persists generated weekly summaries. CreateSummary must
// enforce uniqueness of (user, week start) atomically and report violations
// as ErrSummaryExists; the engine itself holds no locks.
type SummaryRepository interface {
	GetSummary(ctx context.Context, userID string, weekStart time.Time) (*WeeklySummary, error)
	CreateSummary(ctx context.Context, summary WeeklySummary) error
	ListSummaries(ctx context.Context, userID string) ([]WeeklySummary, error)
}

// LeaderboardRepository joins users with their emission totals. Users with
// zero activities are included with zero totals.
type LeaderboardRepository interface {
	ListUsersWithTotals(ctx context.Context, window TimeWindow) ([]LeaderboardEntry, error)
}

// Repository is the full storage collaborator consumed by the engine.
type Repository interface {
	ActivityRepository
	TargetRepository
	SummaryRepository
	LeaderboardRepository
}

// Config tunes the engine's tip selection.
type Config struct {
	TipShareThreshold float64
	TipMessages       TipMessages
}

// Service orchestrates the engine components over the storage collaborator.
// All computation is stateless; every call is independent and reproducible
// given the same stored activities.
type Service struct {
	repo      Repository
	threshold float64
	messages  TipMessages
	now       func() time.Time
}

// NewService constructs a Service with defaults for unset config fields.
func NewService(repo Repository, cfg Config) *Service {
	threshold := cfg.TipShareThreshold
	if threshold <= 0 {
		threshold = DefaultTipShareThreshold
	}
	messages := cfg.TipMessages
	if messages == nil {
		messages = DefaultTipMessages()
	}
	return &Service{
		repo:      repo,
		threshold: threshold,
		messages:  messages,
		now:       time.Now,
	}
}

// LogActivityInput captures the payload from the API layer.
type LogActivityInput struct {
	UserID      string
	Category    Category
	Label       string
	EmissionsKg float64
	OccurredAt  time.Time
}

// LogActivity records a new activity.
func (s *Service) LogActivity(ctx context.Context, input LogActivityInput) (*Activity, error) {
	activity := Activity{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Category:    input.Category,
		Label:       input.Label,
		EmissionsKg: input.EmissionsKg,
		OccurredAt:  input.OccurredAt.UTC(),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity removes an activity owned by the user.
func (s *Service) DeleteActivity(ctx context.Context, userID, activityID string) error {
	return s.repo.DeleteActivity(ctx, userID, activityID)
}

// ListActivities returns the user's activities inside the window, or all of
// them for a zero window.
func (s *Service) ListActivities(ctx context.Context, userID string, window TimeWindow) ([]Activity, error) {
	return s.repo.ListActivities(ctx, userID, window)
}

// GetDashboardAggregates computes category totals for the user over the
// given window (all time for a zero window).
func (s *Service) GetDashboardAggregates(ctx context.Context, userID string, window TimeWindow) (CategoryTotals, error) {
	activities, err := s.repo.ListActivities(ctx, userID, window)
	if err != nil {
		return CategoryTotals{}, err
	}
	return Aggregate(activities, window), nil
}

// GetCurrentWeekView computes a live summary-shaped projection of the
// running week. It is never stored: past weeks are generated snapshots,
// the present week is always aggregated on the fly.
func (s *Service) GetCurrentWeekView(ctx context.Context, userID string) (WeeklySummary, error) {
	weekStart := WeekStart(s.now())
	return s.buildWeek(ctx, userID, weekStart)
}

// GetSummary returns the stored summary for a historical week, or the live
// projection when weekStart is the current week. A past week that was never
// generated yields ErrSummaryNotFound even if it had activities.
func (s *Service) GetSummary(ctx context.Context, userID string, weekStart time.Time) (WeeklySummary, error) {
	if IsCurrentWeek(weekStart, s.now()) {
		return s.buildWeek(ctx, userID, weekStart)
	}
	stored, err := s.repo.GetSummary(ctx, userID, weekStart)
	if err != nil {
		return WeeklySummary{}, err
	}
	if stored == nil {
		return WeeklySummary{}, ErrSummaryNotFound
	}
	return *stored, nil
}

// ListSummaries returns every generated summary for the user.
func (s *Service) ListSummaries(ctx context.Context, userID string) ([]WeeklySummary, error) {
	return s.repo.ListSummaries(ctx, userID)
}

// GeneratePreviousWeekSummary generates and persists the summary for the
// week immediately before the current one. The current week itself is never
// generated; it stays a live view until it ends.
func (s *Service) GeneratePreviousWeekSummary(ctx context.Context, userID string) (WeeklySummary, error) {
	weekStart := PreviousWeek(WeekStart(s.now()))
	return s.GenerateSummary(ctx, userID, weekStart)
}

// GenerateSummary performs the Absent -> Generated transition for
// (user, weekStart). It fails with ErrInvalidWeek for weeks after the
// current one, ErrSummaryExists when already generated, and ErrNoActivities
// when the week is empty. The existence check plus store is atomic in the
// storage collaborator; a concurrent loser sees ErrSummaryExists.
func (s *Service) GenerateSummary(ctx context.Context, userID string, weekStart time.Time) (WeeklySummary, error) {
	now := s.now()
	if weekStart.After(WeekStart(now)) {
		return WeeklySummary{}, ErrInvalidWeek
	}

	existing, err := s.repo.GetSummary(ctx, userID, weekStart)
	if err != nil {
		return WeeklySummary{}, err
	}
	if existing != nil {
		return WeeklySummary{}, ErrSummaryExists
	}

	summary, err := s.buildWeek(ctx, userID, weekStart)
	if err != nil {
		return WeeklySummary{}, err
	}
	if summary.ActivityCount == 0 {
		return WeeklySummary{}, ErrNoActivities
	}

	summary.ID = uuid.NewString()
	if err := s.repo.CreateSummary(ctx, summary); err != nil {
		return WeeklySummary{}, err
	}
	return summary, nil
}

// GetLeaderboard ranks all users by total emissions over the window
// (all time for a zero window).
func (s *Service) GetLeaderboard(ctx context.Context, window TimeWindow) ([]LeaderboardEntry, error) {
	entries, err := s.repo.ListUsersWithTotals(ctx, window)
	if err != nil {
		return nil, err
	}
	return RankLeaderboard(entries), nil
}

// GetReductionTarget returns the user's active target, nil when none is set.
func (s *Service) GetReductionTarget(ctx context.Context, userID string) (*ReductionTarget, error) {
	return s.repo.GetReductionTarget(ctx, userID)
}

// SetReductionTarget creates or replaces the user's active target. Already
// generated summaries keep the target snapshot they were scored with.
func (s *Service) SetReductionTarget(ctx context.Context, userID string, targetType TargetType, value float64) (*ReductionTarget, error) {
	now := s.now().UTC()
	target := ReductionTarget{
		UserID:    userID,
		Type:      targetType,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertReductionTarget(ctx, target); err != nil {
		return nil, err
	}
	return &target, nil
}

// buildWeek aggregates one week plus its predecessor and assembles the
// summary-shaped result.
func (s *Service) buildWeek(ctx context.Context, userID string, weekStart time.Time) (WeeklySummary, error) {
	window := WeekWindow(weekStart)
	activities, err := s.repo.ListActivities(ctx, userID, window)
	if err != nil {
		return WeeklySummary{}, err
	}
	week := Aggregate(activities, window)

	prevWindow := WeekWindow(PreviousWeek(weekStart))
	prevActivities, err := s.repo.ListActivities(ctx, userID, prevWindow)
	if err != nil {
		return WeeklySummary{}, err
	}
	prev := Aggregate(prevActivities, prevWindow)
	previousAvailable := prev.ActivityCount > 0

	target, err := s.repo.GetReductionTarget(ctx, userID)
	if err != nil {
		return WeeklySummary{}, err
	}

	return BuildSummary(userID, weekStart, week, prev.GrandTotalKg, previousAvailable, target, s.threshold, s.messages, s.now().UTC()), nil
}
