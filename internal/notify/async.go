package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/metrics"
)

// Async runs the wrapped dispatcher on its own goroutine and returns at once.
//
// Behavior:
//   - The delivery context is detached from the caller's cancellation, so a
//     finished RPC does not cancel an in-flight notification.
//   - Each delivery is bounded by timeout.
//   - Failures are logged and counted; Notify itself never fails.
type Async struct {
	next    Dispatcher
	timeout time.Duration
	log     *slog.Logger

	wg sync.WaitGroup
}

func NewAsync(next Dispatcher, timeout time.Duration, log *slog.Logger) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, timeout: timeout, log: log}
}

func (a *Async) Notify(ctx context.Context, userID string, e Event) error {
	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()

		if err := a.next.Notify(ctx, userID, e); err != nil {
			metrics.NotificationsFailed.WithLabelValues(string(e.EventType())).Inc()
			a.log.Warn("notification failed",
				"event", e.EventType(),
				"user", userID,
				"err", err,
			)
		}
	}()
	return nil
}

// Wait blocks until every dispatched notification has finished. Used on
// shutdown and in tests.
func (a *Async) Wait() {
	a.wg.Wait()
}
