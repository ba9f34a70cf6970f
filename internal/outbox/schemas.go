package outbox

const activityEventSchema = `{
  "type": "object",
  "title": "CarbonActivityEvent",
  "properties": {
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "category": {"type": "string"},
    "label": {"type": "string"},
    "emissions_kg": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "occurred_at"],
  "additionalProperties": false
}`

const summaryGeneratedSchema = `{
  "type": "object",
  "title": "WeeklySummaryGenerated",
  "properties": {
    "summary_id": {"type": "string"},
    "user_id": {"type": "string"},
    "week_start": {"type": "string", "format": "date"},
    "total_kg": {"type": "number"},
    "activity_count": {"type": "integer"},
    "generated_at": {"type": "string", "format": "date-time"}
  },
  "required": ["summary_id", "user_id", "week_start", "total_kg", "activity_count", "generated_at"],
  "additionalProperties": false
}`
