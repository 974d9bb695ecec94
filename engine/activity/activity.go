// Package activity implements the bounded activity log.
package activity

// DefaultCapacity is the number of entries kept before the oldest is evicted.
const DefaultCapacity = 50

// Log is a fixed-capacity ring of activity lines. Pushing past capacity
// drops the oldest entry.
type Log struct {
	buf   []string
	head  int // index of the oldest entry
	count int
}

// New creates an empty log with the given capacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{buf: make([]string, capacity)}
}

// Restore creates a log from persisted entries (oldest first). If there are
// more entries than capacity, only the newest are kept.
func Restore(entries []string, capacity int) *Log {
	l := New(capacity)
	for _, e := range entries {
		l.Push(e)
	}
	return l
}

// Push appends an entry, evicting the oldest when full.
func (l *Log) Push(entry string) {
	if l.count < len(l.buf) {
		l.buf[(l.head+l.count)%len(l.buf)] = entry
		l.count++
		return
	}
	l.buf[l.head] = entry
	l.head = (l.head + 1) % len(l.buf)
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	return l.count
}

// Entries returns all entries, oldest first.
func (l *Log) Entries() []string {
	out := make([]string, 0, l.count)
	for i := 0; i < l.count; i++ {
		out = append(out, l.buf[(l.head+i)%len(l.buf)])
	}
	return out
}

// Recent returns up to n entries, most recent first.
func (l *Log) Recent(n int) []string {
	if n > l.count {
		n = l.count
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.buf[(l.head+l.count-1-i)%len(l.buf)])
	}
	return out
}
