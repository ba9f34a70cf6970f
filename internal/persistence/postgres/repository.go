// Package postgres provides the Postgres-backed storage collaborator for the
// analytics engine: activities, reduction targets, weekly summaries, user
// accounts, and the event outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
	"github.com/siyabuilds/carbontrackr-backend/internal/observability"
)

const uniqueViolation = "23505"

// Repository provides Postgres-backed persistence and the outbox writes that
// accompany it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateActivity persists the activity and records an activity.logged outbox
// event inside a single transaction.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (activity_id, user_id, category, label, emissions_kg, occurred_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.UserID,
		string(activity.Category),
		activity.Label,
		activity.EmissionsKg,
		activity.OccurredAt,
		activity.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, eventActivityLogged, activity.ID, activity.UserID, activityLoggedPayload(activity)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.CreatedAt)
	return nil
}

// DeleteActivity removes the user's activity and records an activity.deleted
// event in the same transaction.
func (r *Repository) DeleteActivity(ctx context.Context, userID, activityID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE user_id=$1 AND activity_id=$2`, userID, activityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrActivityNotFound
		return err
	}

	payload := map[string]any{
		"activity_id": activityID,
		"user_id":     userID,
		"occurred_at": time.Now().UTC(),
	}
	if err = insertOutbox(ctx, tx, eventActivityDeleted, activityID, userID, payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListActivities returns the user's activities, restricted to the half-open
// window when one is given, newest first.
func (r *Repository) ListActivities(ctx context.Context, userID string, window domain.TimeWindow) ([]domain.Activity, error) {
	query := `SELECT activity_id, user_id, category, label, emissions_kg, occurred_at, created_at
        FROM activities WHERE user_id=$1`
	args := []interface{}{userID}

	if !window.Start.IsZero() {
		args = append(args, window.Start)
		query += fmt.Sprintf(` AND occurred_at >= $%d`, len(args))
	}
	if !window.End.IsZero() {
		args = append(args, window.End)
		query += fmt.Sprintf(` AND occurred_at < $%d`, len(args))
	}
	query += ` ORDER BY occurred_at DESC, activity_id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var category string
		if err := rows.Scan(&a.ID, &a.UserID, &category, &a.Label, &a.EmissionsKg, &a.OccurredAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Category = domain.Category(category)
		results = append(results, a)
	}
	return results, rows.Err()
}

// GetReductionTarget returns the user's active target, nil when none is set.
func (r *Repository) GetReductionTarget(ctx context.Context, userID string) (*domain.ReductionTarget, error) {
	const query = `SELECT user_id, target_type, target_value, created_at, updated_at
        FROM reduction_targets WHERE user_id=$1`

	row := r.pool.QueryRow(ctx, query, userID)
	var target domain.ReductionTarget
	var targetType string
	if err := row.Scan(&target.UserID, &targetType, &target.Value, &target.CreatedAt, &target.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	target.Type = domain.TargetType(targetType)
	return &target, nil
}

// UpsertReductionTarget creates or replaces the user's single active target.
func (r *Repository) UpsertReductionTarget(ctx context.Context, target domain.ReductionTarget) error {
	const stmt = `INSERT INTO reduction_targets (user_id, target_type, target_value, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id) DO UPDATE
        SET target_type = EXCLUDED.target_type, target_value = EXCLUDED.target_value, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, stmt,
		target.UserID,
		string(target.Type),
		target.Value,
		target.CreatedAt,
		target.UpdatedAt,
	)
	return err
}

// GetSummary fetches a stored summary by its natural key, nil when absent.
func (r *Repository) GetSummary(ctx context.Context, userID string, weekStart time.Time) (*domain.WeeklySummary, error) {
	const query = `SELECT summary_id, user_id, week_start, total_kg, activity_count, snapshot, generated_at
        FROM weekly_summaries WHERE user_id=$1 AND week_start=$2`

	row := r.pool.QueryRow(ctx, query, userID, weekStart)
	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return summary, nil
}

// CreateSummary inserts the summary and a summary.generated outbox event in
// one transaction. The UNIQUE (user_id, week_start) constraint makes the
// existence check and the insert atomic: a concurrent duplicate surfaces as
// domain.ErrSummaryExists, never as a second row.
func (r *Repository) CreateSummary(ctx context.Context, summary domain.WeeklySummary) error {
	snapshot, err := json.Marshal(newSummarySnapshot(summary))
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO weekly_summaries (summary_id, user_id, week_start, total_kg, activity_count, snapshot, generated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		summary.ID,
		summary.UserID,
		summary.WeekStart,
		summary.TotalKg,
		summary.ActivityCount,
		snapshot,
		summary.GeneratedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			observability.RecordSummaryConflict()
			err = domain.ErrSummaryExists
		}
		return err
	}

	payload := map[string]any{
		"summary_id":     summary.ID,
		"user_id":        summary.UserID,
		"week_start":     summary.WeekStart.UTC().Format("2006-01-02"),
		"total_kg":       summary.TotalKg,
		"activity_count": summary.ActivityCount,
		"generated_at":   summary.GeneratedAt,
	}
	if err = insertOutbox(ctx, tx, eventSummaryGenerated, summary.ID, summary.UserID, payload); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordSummaryGenerated()
	return nil
}

// ListSummaries returns every generated summary for the user, newest first.
func (r *Repository) ListSummaries(ctx context.Context, userID string) ([]domain.WeeklySummary, error) {
	const query = `SELECT summary_id, user_id, week_start, total_kg, activity_count, snapshot, generated_at
        FROM weekly_summaries WHERE user_id=$1 ORDER BY week_start DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.WeeklySummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *summary)
	}
	return results, rows.Err()
}

// ListUsersWithTotals joins every account with its emission totals over the
// window. The LEFT JOIN keeps zero-activity users in the result with zeros.
func (r *Repository) ListUsersWithTotals(ctx context.Context, window domain.TimeWindow) ([]domain.LeaderboardEntry, error) {
	start := time.Now()

	query := `SELECT u.user_id, u.username, u.full_name, u.created_at,
            COALESCE(SUM(a.emissions_kg), 0) AS total_kg,
            COUNT(a.activity_id) AS activity_count
        FROM users u
        LEFT JOIN activities a ON a.user_id = u.user_id`
	var args []interface{}

	if !window.Start.IsZero() {
		args = append(args, window.Start)
		query += fmt.Sprintf(` AND a.occurred_at >= $%d`, len(args))
	}
	if !window.End.IsZero() {
		args = append(args, window.End)
		query += fmt.Sprintf(` AND a.occurred_at < $%d`, len(args))
	}
	query += ` GROUP BY u.user_id, u.username, u.full_name, u.created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var user domain.User
		var totalKg float64
		var activityCount int
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.CreatedAt, &totalKg, &activityCount); err != nil {
			return nil, err
		}
		entries = append(entries, domain.NewLeaderboardEntry(user, totalKg, activityCount))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	observability.ObserveLeaderboardBuild(time.Since(start))
	return entries, nil
}

// CreateUser inserts a new account. Duplicate usernames or emails surface as
// domain.ErrUserExists.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (user_id, username, full_name, email, password_hash, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := r.pool.Exec(ctx, stmt,
		user.ID,
		user.Username,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

// FindUserByLogin looks an account up by username or email, nil when absent.
func (r *Repository) FindUserByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	const query = `SELECT user_id, username, full_name, email, password_hash, created_at
        FROM users WHERE username=$1 OR email=$1`

	row := r.pool.QueryRow(ctx, query, usernameOrEmail)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUserIDs returns every account ID, used by the scheduled generator.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
