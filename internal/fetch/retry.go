package fetch

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// retryState is the per-call attempt counter. It only decides; logging and
// sleeping are done by the caller.
type retryState struct {
	attempt int
	ceiling int
	delay   time.Duration
}

func newRetryState(ceiling int, delay time.Duration) *retryState {
	if ceiling <= 0 {
		ceiling = DefaultMaxAttempts
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &retryState{ceiling: ceiling, delay: delay}
}

// fail records a failed attempt and reports whether another one is allowed.
func (s *retryState) fail() (attempt int, retry bool) {
	s.attempt++
	return s.attempt, s.attempt < s.ceiling
}

// RetryEvent is emitted once per failed attempt.
type RetryEvent struct {
	URL         string
	Attempt     int
	MaxAttempts int
	Delay       time.Duration
	Err         error
	// Final is set on the last allowed attempt; no retry follows it.
	Final bool
}

// Observer receives fetch diagnostics.
type Observer interface {
	AttemptFailed(ev RetryEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev RetryEvent)

func (f ObserverFunc) AttemptFailed(ev RetryEvent) { f(ev) }

// LogObserver writes one zerolog warning per failed attempt. A nil Logger
// uses the global logger.
type LogObserver struct {
	Logger *zerolog.Logger
}

func (o LogObserver) AttemptFailed(ev RetryEvent) {
	l := &log.Logger
	if o.Logger != nil {
		l = o.Logger
	}
	reason := "error during request"
	var ae *AttemptError
	if errors.As(ev.Err, &ae) {
		reason = ae.Reason()
	}
	e := l.Warn().Err(ev.Err).
		Str("url", ev.URL).
		Str("reason", reason).
		Int("attempt", ev.Attempt).
		Int("max", ev.MaxAttempts)
	if ae != nil && ae.StatusCode != 0 {
		e = e.Int("status", ae.StatusCode)
	}
	if ev.Final {
		e.Msg("fetch attempt failed; giving up")
		return
	}
	e.Dur("delay", ev.Delay).Msg("fetch attempt failed; retrying")
}
