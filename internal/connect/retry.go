// Package connect waits for backing services (redis, postgres) to become
// reachable at startup, retrying with capped exponential backoff.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/logger"
)

// PingFunc checks a backend once.
type PingFunc func(ctx context.Context) error

// Policy defines connection retry behavior.
type Policy struct {
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

// Validate ensures all policy values are usable.
func (p Policy) Validate() error {
	if p.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	}
	if p.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	}
	if p.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	}
	if p.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	}
	if p.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// attemptLogger handles all connection logging for one backend.
type attemptLogger struct {
	log     logger.Logger
	backend string
	target  string
}

func (al *attemptLogger) start(timeout time.Duration) {
	al.log.Info("connecting to "+al.backend,
		logger.String("target", al.target),
		logger.Duration("timeout", timeout))
}

func (al *attemptLogger) success(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		al.log.Warn("connected to "+al.backend+" after retry",
			logger.String("target", al.target),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	al.log.Info("connected to "+al.backend, logger.String("target", al.target))
}

func (al *attemptLogger) timeout(attempts int, timeout time.Duration, err error) {
	al.log.Error(al.backend+" unavailable - failed to connect after timeout",
		logger.String("target", al.target),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (al *attemptLogger) retry(attempt int, remaining, nextRetry time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		al.log.Error(al.backend+" still down - retrying but timeout approaching",
			logger.String("target", al.target),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	case attempt <= warnThreshold:
		al.log.Warn(al.backend+" connection failed, retrying",
			logger.String("target", al.target),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	default:
		al.log.Error(al.backend+" still unavailable - connection attempts failing",
			logger.String("target", al.target),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	}
}

// WithRetry pings until it succeeds or the policy's ConnectTimeout (or
// ctx) expires. backend names the dependency in logs; target is its
// address with credentials removed.
func WithRetry(ctx context.Context, backend, target string, policy Policy, log logger.Logger, ping PingFunc) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("%s retry policy: %w", backend, err)
	}

	ctx, cancel := context.WithTimeout(ctx, policy.ConnectTimeout)
	defer cancel()

	al := &attemptLogger{log: log, backend: backend, target: target}
	al.start(policy.ConnectTimeout)

	attempt := 0
	wait := policy.RetryInterval
	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, policy.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			al.success(attempt, policy.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			al.timeout(attempt, policy.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				backend, target, attempt, policy.ConnectTimeout, err)

		case <-timer.C:
			al.retry(attempt, timeLeft(ctx), wait, policy.WarnThreshold, err)
			wait *= 2
			if wait > policy.MaxWait {
				wait = policy.MaxWait
			}
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
