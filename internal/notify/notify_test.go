package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/notify"
)

func TestMarshal_Envelope(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := notify.Marshal("u2", notify.MatchCreated{MatchID: "m1", OtherUserID: "u1"}, at)
	require.NoError(t, err)

	var env notify.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, notify.TypeMatchCreated, env.Type)
	assert.Equal(t, "u2", env.UserID)
	assert.True(t, at.Equal(env.SentAt))

	var mc notify.MatchCreated
	require.NoError(t, json.Unmarshal(env.Data, &mc))
	assert.Equal(t, "m1", mc.MatchID)
	assert.Equal(t, "u1", mc.OtherUserID)
}

func TestRedisPublisher_PublishesToUserChannel(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	defer rc.Close()

	sub := rc.Client.Subscribe(ctx, notify.Channel("u9"))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	pub := notify.NewRedisPublisher(rc)
	require.NoError(t, pub.Notify(ctx, "u9", notify.LikeReceived{FromUserID: "u3"}))

	select {
	case msg := <-sub.Channel():
		var env notify.Envelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, notify.TypeLikeReceived, env.Type)
		assert.JSONEq(t, `{"from_user_id":"u3"}`, string(env.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("no notification published")
	}
}

func TestAsync_DetachesFromCallerCancellation(t *testing.T) {
	rec := &notify.Recorder{}
	a := notify.NewAsync(rec, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Notify(ctx, "u1", notify.LikeReceived{FromUserID: "u2"}))
	cancel()
	a.Wait()

	sent := rec.OfType(notify.TypeLikeReceived)
	require.Len(t, sent, 1)
	assert.Equal(t, "u1", sent[0].UserID)
}

type blockingDispatcher struct{ err chan error }

func (b blockingDispatcher) Notify(ctx context.Context, _ string, _ notify.Event) error {
	<-ctx.Done()
	b.err <- ctx.Err()
	return ctx.Err()
}

func TestAsync_BoundedByTimeout(t *testing.T) {
	errs := make(chan error, 1)
	a := notify.NewAsync(blockingDispatcher{err: errs}, 20*time.Millisecond, logger.Nop())

	start := time.Now()
	require.NoError(t, a.Notify(context.Background(), "u1", notify.LikeReceived{}))
	assert.Less(t, time.Since(start), 20*time.Millisecond, "Notify must not block")

	a.Wait()
	assert.True(t, errors.Is(<-errs, context.DeadlineExceeded))
}

func TestAsync_FailureIsSwallowed(t *testing.T) {
	rec := &notify.Recorder{Err: errors.New("gateway down")}
	a := notify.NewAsync(rec, time.Second, logger.Nop())

	err := a.Notify(context.Background(), "u1", notify.MatchRequestResponse{RequestID: "r1", Decision: "accept"})
	assert.NoError(t, err)
	a.Wait()
	assert.Len(t, rec.Sent(), 1)
}
