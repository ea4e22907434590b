package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Publisher buffers audit events and hands them to a background worker for
// persistence. Emit never blocks the request path: when the buffer is full
// the event is dropped and a warning logged.
type Publisher struct {
	store  Store
	logger *slog.Logger
	inbox  chan Event
}

func NewPublisher(store Store, logger *slog.Logger, bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Publisher{
		store:  store,
		logger: logger,
		inbox:  make(chan Event, bufferSize),
	}
}

// Emit enqueues an event for persistence. Zero timestamps and IDs are filled
// in here so call sites stay terse.
func (p *Publisher) Emit(_ context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		droppedEvents.Inc()
		p.logger.Warn("audit buffer full, dropping event", "kind", event.Kind)
	}
	return nil
}

// List returns the most recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Run consumes the inbox until ctx is cancelled, then drains whatever is
// still buffered before returning.
func (p *Publisher) Run(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return ctx.Err()
			case event := <-p.inbox:
				p.persist(event)
			}
		}
	})
	return g.Wait()
}

func (p *Publisher) drain() {
	for {
		select {
		case event := <-p.inbox:
			p.persist(event)
		default:
			return
		}
	}
}

func (p *Publisher) persist(event Event) {
	// Persistence uses its own context so a cancelled request cannot lose
	// the trail entry.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Error("failed to persist audit event", "kind", event.Kind, "error", err)
	}
}
