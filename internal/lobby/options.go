package lobby

import (
	"time"

	"go.uber.org/zap"

	"staredown/internal/app"
	"staredown/internal/config"
	"staredown/internal/ports"
	"staredown/internal/session"
)

// Policy holds the tiered idle-expiry thresholds.
type Policy struct {
	UnstartedIdle time.Duration
	StartedIdle   time.Duration
	MaxAge        time.Duration
	SessionTTL    time.Duration
}

// DefaultPolicy returns the stock expiry thresholds.
func DefaultPolicy() Policy {
	return Policy{
		UnstartedIdle: time.Hour,
		StartedIdle:   2 * time.Hour,
		MaxAge:        6 * time.Hour,
		SessionTTL:    5 * time.Minute,
	}
}

// PolicyFrom maps the expiry config section onto a Policy.
func PolicyFrom(c config.ExpiryConfig) Policy {
	return Policy{
		UnstartedIdle: c.UnstartedIdle,
		StartedIdle:   c.StartedIdle,
		MaxAge:        c.MaxAge,
		SessionTTL:    c.SessionTTL,
	}
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(r *Registry) { r.policy = p }
}

func WithNotifier(n ports.Notifier) Option {
	return func(r *Registry) {
		if n != nil {
			r.notifier = n
		}
	}
}

func WithSessions(s *session.Registry) Option {
	return func(r *Registry) {
		if s != nil {
			r.sessions = s
		}
	}
}

// WithService swaps the game state machine, e.g. for a seeded deck in tests.
func WithService(svc *app.Service) Option {
	return func(r *Registry) {
		if svc != nil {
			r.svc = svc
		}
	}
}

// WithRoomCodes overrides room code generation.
func WithRoomCodes(gen func() (string, error)) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newRoomCode = gen
		}
	}
}
