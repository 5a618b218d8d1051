package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Event is the message published for every mutation of a tree.
type Event struct {
	Tree   string `json:"tree"`
	Origin string `json:"origin"`
	domain.MutationEvent
}

// Publisher fans tree mutations out to other replicas over Redis pub/sub.
type Publisher struct {
	client  *backend.Client
	channel string
	origin  string
	timeout time.Duration
	logger  *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublishTimeout bounds each publish. Hooks run while the tree is locked, so an
// unreachable Redis delays the mutation by at most d.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// NewPublisher creates a publisher writing to prefix+"events". Each publisher tags its
// events with a random origin so Forward can skip the ones it sent itself.
func NewPublisher(client *backend.Client, prefix string, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		client:  client,
		channel: prefix + "events",
		origin:  uuid.NewString(),
		timeout: 2 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the pub/sub channel name.
func (p *Publisher) Channel() string {
	return p.channel
}

// Hooks returns mutation hooks that publish every event of the named tree.
// Publishing is synchronous and bounded by the publish timeout. Failures are logged,
// never returned to the mutating caller.
func (p *Publisher) Hooks(tree string) domain.Hooks {
	return domain.Hooks{
		OnMutation: func(e domain.MutationEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			defer cancel()
			p.publish(ctx, Event{Tree: tree, Origin: p.origin, MutationEvent: e})
		},
	}
}

// Forward calls fn for every event in events sent by another publisher, until events is
// closed. Pair it with Subscribe to relay the mutations of other replicas.
func (p *Publisher) Forward(events <-chan Event, fn func(Event)) {
	for e := range events {
		if e.Origin == p.origin {
			continue
		}
		fn(e)
	}
}

func (p *Publisher) publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("encode mutation event", "tree", e.Tree, "err", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("publish mutation event", "tree", e.Tree, "op", e.Op, "err", err)
	}
}

// Subscribe delivers events published by any replica until ctx is done.
// The returned channel is closed when the subscription ends.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := p.client.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					p.logger.Warn("decode mutation event", "err", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
