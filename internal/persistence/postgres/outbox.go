package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
)

const (
	eventActivityLogged   = "activity.logged"
	eventActivityDeleted  = "activity.deleted"
	eventSummaryGenerated = "summary.generated"
)

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
	AggregateType string
}

var eventCatalog = map[string]EventMetadata{
	eventActivityLogged: {
		Topic:         "carbon_activity_events",
		SchemaSubject: "carbon_activity_events-value",
		AggregateType: "activity",
	},
	eventActivityDeleted: {
		Topic:         "carbon_activity_events",
		SchemaSubject: "carbon_activity_events-value",
		AggregateType: "activity",
	},
	eventSummaryGenerated: {
		Topic:         "carbon_summary_events",
		SchemaSubject: "carbon_summary_events-value",
		AggregateType: "weekly_summary",
	},
}

func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, aggregateID, userID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		meta.AggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
		dedupeKey,
	)
	return err
}

func activityLoggedPayload(activity domain.Activity) map[string]any {
	return map[string]any{
		"activity_id":  activity.ID,
		"user_id":      activity.UserID,
		"category":     string(activity.Category),
		"label":        activity.Label,
		"emissions_kg": activity.EmissionsKg,
		"occurred_at":  activity.OccurredAt.UTC().Format(time.RFC3339Nano),
		"created_at":   activity.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
