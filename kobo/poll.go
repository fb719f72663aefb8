package kobo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// PollConfig bounds a status poll loop.
type PollConfig struct {
	Attempts int
	Interval time.Duration
}

var (
	// DefaultExportPoll allows an export job roughly thirty seconds.
	DefaultExportPoll = PollConfig{Attempts: 30, Interval: time.Second}
	// DefaultImportPoll allows an import task roughly a minute.
	DefaultImportPoll = PollConfig{Attempts: 60, Interval: time.Second}
)

func (p PollConfig) orDefault(def PollConfig) PollConfig {
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	return p
}

// poll calls check at most p.Attempts times, p.Interval apart. The first call
// happens immediately. It stops when check reports done or returns an error.
func poll(ctx context.Context, p PollConfig, check func(ctx context.Context) (bool, error)) error {
	limit := rate.Inf
	if p.Interval > 0 {
		limit = rate.Every(p.Interval)
	}
	lim := rate.NewLimiter(limit, 1)

	for i := 0; i < p.Attempts; i++ {
		if err := lim.Wait(ctx); err != nil {
			return fmt.Errorf("waiting to poll: %w", err)
		}
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrPollTimeout, p.Attempts)
}
