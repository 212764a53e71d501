package exam

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrInvalidTickInterval = errors.New("tick interval must be positive")

// TickFunc receives the remaining seconds after every tick.
type TickFunc func(remaining int)

// ExpireFunc runs once when the clock ends the session.
type ExpireFunc func()

// Countdown drives Session.Tick from a ticker until the session finishes or
// the countdown is stopped.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartCountdown launches the ticker goroutine. Callbacks run on that
// goroutine and must not call Stop.
func StartCountdown(ctx context.Context, s *Session, interval time.Duration, onTick TickFunc, onExpire ExpireFunc) (*Countdown, error) {
	if interval <= 0 {
		return nil, ErrInvalidTickInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.Done():
				return
			case <-ticker.C:
				expired := s.Tick()
				if onTick != nil {
					onTick(s.Remaining())
				}
				if expired {
					if onExpire != nil {
						onExpire()
					}
					return
				}
			}
		}
	}()

	return c, nil
}

// Stop cancels the ticker and waits for the goroutine to exit, so no tick can
// land after it returns. Safe to call more than once.
func (c *Countdown) Stop() {
	c.once.Do(c.cancel)
	<-c.done
}
