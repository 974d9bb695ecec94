package engine

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nathoo/questroux/engine/protocol"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists progress after every mutation.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithIngestor sets the image ingestor used by photo and final quests.
func WithIngestor(i protocol.Ingestor) Option {
	return func(e *Engine) { e.ingestor = i }
}

// WithLocator sets the position source for CurrentPosition.
func WithLocator(l Locator) Option {
	return func(e *Engine) { e.locator = l }
}

// WithNotifier sets the sink for user-facing messages.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs overrides the entry id generator.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithScanDelay sets how long a simulated scan takes.
func WithScanDelay(d time.Duration) Option {
	return func(e *Engine) { e.scanDelay = d }
}

// WithSleep overrides how the scan delay is waited out.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// WithActivityCapacity sets the activity log capacity.
func WithActivityCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.activityCap = n
		}
	}
}

// WithRecentActivity sets how many activity lines the summary returns.
func WithRecentActivity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.recent = n
		}
	}
}

func (e *Engine) applyDefaults() {
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
}
