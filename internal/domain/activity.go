package domain

import "time"

// Activity is a single carbon-emitting action logged by a user. Activities
// are immutable once created; the only mutation is deletion.
type Activity struct {
	ID          string
	UserID      string
	Category    Category
	Label       string
	EmissionsKg float64
	OccurredAt  time.Time
	CreatedAt   time.Time
}
