package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authdomain "github.com/collabhub-dev/collab-backend/internal/auth/domain"
	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
)

// Publisher emits project change events onto the redis channel the
// dispatcher subscribes to.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// ProjectCreated publishes an INSERT event for a freshly created
// project. Fire-and-forget from the lifecycle's point of view; the
// dispatcher's idempotent store absorbs duplicates.
func (p *Publisher) ProjectCreated(ctx context.Context, _ *authdomain.User, proj *domain.Project) error {
	ev := ProjectEvent{
		EventID:   uuid.New().String(),
		EventType: TypeProjectCreated,
		Table:     "projects",
		NewRow: ProjectRow{
			ID:        proj.ID,
			Title:     proj.Title,
			CreatedBy: proj.CreatedBy,
		},
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
