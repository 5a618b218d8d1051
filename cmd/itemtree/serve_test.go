package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/itemtree/internal/logging"
	httpAdapter "github.com/aretw0/itemtree/pkg/adapters/http"
	redisAdapter "github.com/aretw0/itemtree/pkg/adapters/redis"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayRemote(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisAdapter.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	streams := httpAdapter.NewStreamManager(logging.NewNop())
	local := redisAdapter.NewPublisher(client, redisPrefix, logging.NewNop())
	remote := redisAdapter.NewPublisher(client, redisPrefix, logging.NewNop())
	require.NoError(t, relayRemote(ctx, local, streams))

	ch, unsubscribe := streams.Subscribe("main")
	defer unsubscribe()

	local.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ParentID: "main", ItemID: "mine"})
	remote.Hooks("main").Emit(domain.MutationEvent{Op: domain.OpAdd, ParentID: "main", ItemID: "theirs"})

	select {
	case msg := <-ch:
		assert.Contains(t, msg, `"item_id":"theirs"`)
	case <-ctx.Done():
		t.Fatal("remote event not relayed")
	}
}
