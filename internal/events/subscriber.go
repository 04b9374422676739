package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Subscriber is a long-lived subscription to the project change stream.
// One per running dispatcher instance.
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Run subscribes and invokes handle for every event, in arrival order.
// It returns when ctx is canceled; a handle call already in progress is
// allowed to finish first.
func (s *Subscriber) Run(ctx context.Context, handle func(ProjectEvent)) error {
	sub := s.client.Subscribe(ctx, Channel)
	defer sub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev ProjectEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[events] bad payload on %s: %v", Channel, err)
				continue
			}
			handle(ev)
		}
	}
}
