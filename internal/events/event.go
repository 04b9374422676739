package events

// Channel is the pub/sub channel carrying project change events.
const Channel = "events:projects"

// Event types mirror the row-change stream: the payload is the new row.
const (
	TypeProjectCreated = "INSERT"
	TypeProjectUpdated = "UPDATE"
	TypeProjectDeleted = "DELETE"
)

// ProjectEvent is one change event on the projects table. Delivery is
// at-least-once from the consumer's point of view; EventID keys
// downstream idempotency.
type ProjectEvent struct {
	EventID   string     `json:"event_id"`
	EventType string     `json:"event_type"`
	Table     string     `json:"table"`
	NewRow    ProjectRow `json:"new_row"`
}

// ProjectRow is the subset of the projects row the dispatcher needs.
type ProjectRow struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}
