package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayNode struct {
	bus   *Bus
	relay *RedisRelay
	done  chan error
}

func startRelay(t *testing.T, ctx context.Context, addr string) *relayNode {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr})
	bus := NewBus(nil)
	relay := NewRedisRelay(client, "ascend:changes", bus, nil)

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- relay.Run(ctx, ready)
		client.Close()
	}()
	<-ready
	return &relayNode{bus: bus, relay: relay, done: done}
}

func TestRedisRelay_DeliversForeignChanges(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())

	a := startRelay(t, ctx, mr.Addr())
	b := startRelay(t, ctx, mr.Addr())

	gotA := make(chan Change, 4)
	gotB := make(chan Change, 4)
	a.bus.OnExternalChange("availability:*", func(c Change) { gotA <- c })
	b.bus.OnExternalChange("availability:*", func(c Change) { gotB <- c })

	require.NoError(t, a.relay.Notify(ctx, "availability:2"))

	select {
	case c := <-gotB:
		assert.Equal(t, "availability:2", c.Key)
		assert.Equal(t, a.relay.Origin(), c.Origin)
	case <-time.After(2 * time.Second):
		t.Fatal("change did not reach the other instance")
	}

	select {
	case c := <-gotA:
		t.Fatalf("own change echoed back: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-a.done)
	assert.NoError(t, <-b.done)
}

func TestRedisRelay_SubscribeFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	defer client.Close()

	relay := NewRedisRelay(client, "ascend:changes", NewBus(nil), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := relay.Run(ctx, nil)
	assert.Error(t, err)
}
