package redis_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/itemtree/internal/logging"
	"github.com/aretw0/itemtree/pkg/adapters/redis"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_RoundTrip(t *testing.T) {
	_, client := newClient(t)
	pub := redis.NewPublisher(client, "test:", logging.NewNop())
	assert.Equal(t, "test:events", pub.Channel())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := pub.Subscribe(ctx)
	require.NoError(t, err)

	pub.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ParentID: "main", ItemID: "a"})

	select {
	case e := <-events:
		assert.Equal(t, "main", e.Tree)
		assert.Equal(t, domain.OpAdd, e.Op)
		assert.Equal(t, "a", e.ItemID)
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	cancel()
	for range events {
	}
}

func TestPublisher_PublishFailureIsLogged(t *testing.T) {
	mr, client := newClient(t)
	pub := redis.NewPublisher(client, "test:", logging.NewNop())
	mr.Close()

	assert.NotPanics(t, func() {
		pub.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpRemove})
	})
}

func TestPublisher_ForwardSkipsOwnEvents(t *testing.T) {
	_, client := newClient(t)
	local := redis.NewPublisher(client, "test:", logging.NewNop())
	remote := redis.NewPublisher(client, "test:", logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := local.Subscribe(ctx)
	require.NoError(t, err)

	got := make(chan redis.Event, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		local.Forward(events, func(e redis.Event) { got <- e })
	}()

	local.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ParentID: "main", ItemID: "mine"})
	remote.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ParentID: "main", ItemID: "theirs"})

	select {
	case e := <-got:
		assert.Equal(t, "theirs", e.ItemID)
		assert.Equal(t, "main", e.Tree)
		assert.NotEmpty(t, e.Origin)
	case <-ctx.Done():
		t.Fatal("no event forwarded")
	}

	cancel()
	<-done
	assert.Empty(t, got)
}

func TestPublisher_PublishTimeout(t *testing.T) {
	// A server that accepts connections and never answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	var mu sync.Mutex
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	client, err := redis.NewClient("redis://" + ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	pub := redis.NewPublisher(client, "test:", logging.NewNop(), redis.WithPublishTimeout(100*time.Millisecond))

	start := time.Now()
	pub.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ItemID: "a"})
	assert.Less(t, time.Since(start), 2*time.Second)
}
