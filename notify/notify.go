// Package notify provides sinks for short user-facing messages.
package notify

import (
	"sync"
)

// Logger is the subset of a structured logger the log sink needs.
type Logger interface {
	Debug(msg any, keyvals ...any)
}

// Log writes every message to a logger at debug level.
type Log struct {
	Logger Logger
}

// Notify logs the message.
func (l Log) Notify(message string) {
	if l.Logger != nil {
		l.Logger.Debug("notify", "message", message)
	}
}

// Buffer collects messages until they are drained. Safe for concurrent use.
type Buffer struct {
	mu   sync.Mutex
	msgs []string
}

// Notify appends the message.
func (b *Buffer) Notify(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, message)
}

// Drain returns and clears the pending messages.
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.msgs
	b.msgs = nil
	return out
}

// Multi fans a message out to several sinks.
type Multi []interface{ Notify(string) }

// Notify forwards the message to every sink.
func (m Multi) Notify(message string) {
	for _, n := range m {
		n.Notify(message)
	}
}
