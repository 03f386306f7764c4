package usecase

import (
	"context"
	"time"

	"SignalScan/pkg/logger"
)

// runLoop ticks immediately, then every interval. A failed tick waits
// backoff instead. It returns when ctx is done.
func runLoop(ctx context.Context, name string, interval, backoff time.Duration, log *logger.Logger, tick func(context.Context) error) error {
	if backoff <= 0 {
		backoff = interval
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		wait := interval
		if err := tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error(name+" tick failed", logger.Error(err), logger.Duration("backoff", backoff))
			wait = backoff
		}
		timer.Reset(wait)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
