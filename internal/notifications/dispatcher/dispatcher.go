package dispatcher

import (
	"context"
	"fmt"
	"log"
	"sync"

	authdomain "github.com/collabhub-dev/collab-backend/internal/auth/domain"
	"github.com/collabhub-dev/collab-backend/internal/events"
	"github.com/collabhub-dev/collab-backend/internal/notifications/domain"
)

// Store persists notifications idempotently: Insert reports false when
// the (user, event) pair was already dispatched.
type Store interface {
	Insert(ctx context.Context, n *domain.Notification) (bool, error)
}

// Directory resolves users: the event's creator and the interested
// recipient set.
type Directory interface {
	GetByID(ctx context.Context, id string) (*authdomain.User, error)
	ListAll(ctx context.Context) ([]authdomain.User, error)
}

// Source is the long-lived change-event subscription.
type Source interface {
	Run(ctx context.Context, handle func(events.ProjectEvent)) error
}

// LiveFeed pushes a freshly persisted notification to a connected
// recipient. Optional; nil disables live delivery.
type LiveFeed interface {
	Push(ctx context.Context, userID string, n *domain.Notification) error
}

// Dispatcher converts project change events into per-recipient
// notification rows, exactly once per (event, recipient). Events are
// handled in arrival order; the fan-out inside one event runs
// concurrently since the rows are independent.
type Dispatcher struct {
	source Source
	store  Store
	users  Directory
	live   LiveFeed
}

func New(source Source, store Store, users Directory, live LiveFeed) *Dispatcher {
	return &Dispatcher{source: source, store: store, users: users, live: live}
}

// Run consumes the event stream until ctx is canceled. Fan-out for an
// event that was already received completes even during shutdown, so
// no accepted event is silently dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.source.Run(ctx, func(ev events.ProjectEvent) {
		d.Handle(context.WithoutCancel(ctx), ev)
	})
}

// Handle processes one event. Safe to call with the same event more
// than once: the store's conflict key absorbs redelivery.
func (d *Dispatcher) Handle(ctx context.Context, ev events.ProjectEvent) {
	if ev.EventType != events.TypeProjectCreated {
		return
	}

	creator, err := d.users.GetByID(ctx, ev.NewRow.CreatedBy)
	if err != nil {
		// At-least-once delivery: a redelivered event gets another shot.
		log.Printf("[dispatch] resolve creator %s for event %s: %v", ev.NewRow.CreatedBy, ev.EventID, err)
		return
	}
	creatorName := creator.DisplayName()
	message := fmt.Sprintf("%s ha creado un nuevo proyecto: %s", creatorName, ev.NewRow.Title)

	recipients, err := d.users.ListAll(ctx)
	if err != nil {
		log.Printf("[dispatch] list recipients for event %s: %v", ev.EventID, err)
		return
	}

	var wg sync.WaitGroup
	for _, recipient := range recipients {
		if recipient.ID == creator.ID {
			continue
		}

		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			d.notify(ctx, ev, userID, message, creatorName)
		}(recipient.ID)
	}
	wg.Wait()
}

func (d *Dispatcher) notify(ctx context.Context, ev events.ProjectEvent, userID, message, creatorName string) {
	n := &domain.Notification{
		UserID:       userID,
		EventID:      ev.EventID,
		Message:      message,
		ProjectID:    ev.NewRow.ID,
		ProjectTitle: ev.NewRow.Title,
		CreatorName:  creatorName,
	}

	inserted, err := d.store.Insert(ctx, n)
	if err != nil {
		// Non-fatal for the rest of the fan-out; this recipient's
		// notification is lost unless the event is redelivered.
		log.Printf("[dispatch] persist notification event=%s user=%s: %v", ev.EventID, userID, err)
		return
	}
	if !inserted {
		// Redelivery; the live push already happened the first time.
		return
	}

	if d.live != nil {
		if err := d.live.Push(ctx, userID, n); err != nil {
			log.Printf("[dispatch] live push event=%s user=%s: %v", ev.EventID, userID, err)
		}
	}
}
