package notify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/cache"
	"github.com/workmatch/workmatch/internal/config"
	"github.com/workmatch/workmatch/internal/events"
	"github.com/workmatch/workmatch/internal/notify"
)

func newAppContext(t *testing.T, redisAddr string) *app.AppContext {
	t.Helper()

	cfg := config.New()
	cfg.Redis.Addr = redisAddr

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	return app.New(cfg, nil, cache.NewRedisCache(cfg), EventBus.New(), logger)
}

func TestMatchCreatedDelivered(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	appCtx := newAppContext(t, mr.Addr())
	require.NoError(t, notify.New(appCtx).Start())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := appCtx.RedisCache.Client.Subscribe(ctx, appCtx.RedisCache.ChannelForUser(1))
	t.Cleanup(func() { sub.Close() })
	_, err = sub.Receive(ctx) // wait for the subscription to be active
	require.NoError(t, err)

	appCtx.Bus.Publish(events.MatchCreatedTopic, events.MatchCreated{
		MatchID: 7, JobseekerID: 1, CompanyID: 10,
	})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var env notify.Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, "match_created", env.Type)
	assert.Equal(t, float64(7), env.Payload["matchId"])
	assert.Equal(t, float64(10), env.Payload["companyId"])
}

func TestInterviewScheduledFansOutToBothSides(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	appCtx := newAppContext(t, mr.Addr())
	require.NoError(t, notify.New(appCtx).Start())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := appCtx.RedisCache.Client.Subscribe(ctx,
		appCtx.RedisCache.ChannelForUser(1),
		"notify:company:10",
	)
	t.Cleanup(func() { sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	appCtx.Bus.Publish(events.InterviewScheduledTopic, events.InterviewScheduled{
		MatchID: 7, JobseekerID: 1, CompanyID: 10,
		ScheduledAt: 1700000000000, InterviewType: "video",
	})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		seen[msg.Channel] = true
	}
	assert.True(t, seen[appCtx.RedisCache.ChannelForUser(1)])
	assert.True(t, seen["notify:company:10"])
}

// TestSlowSinkDoesNotStallPublisher: publishing a domain event must return
// immediately even when the Redis side channel hangs. The sink here accepts
// connections and never replies, so the underlying publish only gives up on
// its own timeout, well after Bus.Publish has returned.
func TestSlowSinkDoesNotStallPublisher(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() { io.Copy(io.Discard, conn) }() // swallow writes, never reply
		}
	}()

	appCtx := newAppContext(t, ln.Addr().String())
	require.NoError(t, notify.New(appCtx).Start())

	start := time.Now()
	appCtx.Bus.Publish(events.MatchCreatedTopic, events.MatchCreated{
		MatchID: 7, JobseekerID: 1, CompanyID: 10,
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 500*time.Millisecond,
		fmt.Sprintf("publish blocked for %s", elapsed))
}
