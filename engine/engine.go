// Package engine owns the single progress record and serializes every
// public operation on it: listing, tracking, completion, and the derived
// views. Rules, protocol, ledger, and tracking are pure; this package is
// where their results are swapped in and persisted.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nathoo/questroux/engine/activity"
	"github.com/nathoo/questroux/engine/events"
	"github.com/nathoo/questroux/engine/ledger"
	"github.com/nathoo/questroux/engine/protocol"
	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/engine/rules"
	"github.com/nathoo/questroux/engine/save"
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/engine/tracking"
	"github.com/nathoo/questroux/types"
)

// Store persists the encoded progress snapshot. Load reports ok=false
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// SaveStamper is implemented by stores that record when the snapshot was
// last written.
type SaveStamper interface {
	UpdatedAt(ctx context.Context) (time.Time, bool, error)
}

// Locator samples the device position.
type Locator interface {
	CurrentPosition(ctx context.Context) (types.Position, error)
}

// Notifier shows a short message to the user. Fire and forget.
type Notifier interface {
	Notify(message string)
}

// Logger is the structured logger the engine writes to. *log.Logger from
// charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Engine holds the catalog and the live progress record.
type Engine struct {
	mu       sync.Mutex
	cat      *state.Catalog
	progress types.Progress
	inflight map[string]bool

	store    Store
	ingestor protocol.Ingestor
	locator  Locator
	notifier Notifier
	logger   Logger

	now         func() time.Time
	newID       func() string
	sleep       func(time.Duration)
	scanDelay   time.Duration
	activityCap int
	recent      int
}

// Result is the outcome of a successful completion. Committed is also
// set when the commit succeeded but persisting it failed.
type Result struct {
	Quest     types.Quest
	RewardXP  int
	XP        int
	Committed bool
	Events    []types.Event
	Unlocked  []string // quest ids that became available
	Message   string
}

// TrackResult is the outcome of ToggleTrack.
type TrackResult struct {
	Quest   types.Quest
	Tracked bool
	Message string
}

// New creates an engine over cat with empty progress.
func New(cat *state.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cat:         cat,
		progress:    state.NewProgress(),
		inflight:    map[string]bool{},
		scanDelay:   protocol.DefaultScanDelay,
		activityCap: activity.DefaultCapacity,
		recent:      ledger.DefaultRecent,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.applyDefaults()
	return e
}

// Catalog returns the quest catalog.
func (e *Engine) Catalog() *state.Catalog {
	return e.cat
}

// Progress returns a copy of the current progress.
func (e *Engine) Progress() types.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.Clone(e.progress)
}

// Load restores progress from the store. A missing snapshot leaves the
// defaults in place.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	data, ok, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Error("load progress", "err", err)
		return questerr.Wrap(questerr.Persistence, "", err)
	}
	if !ok {
		e.logger.Debug("no saved progress")
		return nil
	}
	p, err := save.Decode(data)
	if err != nil {
		e.logger.Error("decode progress", "err", err)
		return questerr.Wrap(questerr.Persistence, "", err)
	}
	p.ActivityLog = activity.Restore(p.ActivityLog, e.activityCap).Entries()
	if p.Tracked != "" {
		if _, ok := e.cat.Quest(p.Tracked); !ok {
			p.Tracked = ""
		}
	}

	e.mu.Lock()
	e.progress = p
	e.mu.Unlock()
	e.logger.Info("progress loaded", "xp", p.XP, "completed", len(p.Completed))
	return nil
}

// ListQuests partitions the catalog by current status.
func (e *Engine) ListQuests() types.QuestList {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.Partition(e.cat, e.progress)
}

// TrackedQuest returns the tracked quest, if any.
func (e *Engine) TrackedQuest() (types.Quest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return tracking.Tracked(e.cat, e.progress)
}

// Status returns the current status of a quest.
func (e *Engine) Status(questID string) (types.Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.cat.Quest(questID)
	if !ok {
		return "", unknownQuest(questID)
	}
	return rules.Status(q, e.progress), nil
}

// ProgressSummary derives the progress view.
func (e *Engine) ProgressSummary() types.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ledger.Summarize(e.cat, e.progress, e.recent)
}

// SubmitCompletion validates evidence for an available quest and commits
// it. Only one submission per quest may be in flight; the engine lock is
// not held while the protocol waits on ingestion or the scan delay.
func (e *Engine) SubmitCompletion(ctx context.Context, questID string, ev protocol.Evidence) (Result, error) {
	e.mu.Lock()
	q, ok := e.cat.Quest(questID)
	if !ok {
		e.mu.Unlock()
		return Result{}, e.reject(unknownQuest(questID))
	}
	if e.inflight[questID] {
		e.mu.Unlock()
		return Result{}, e.reject(questerr.New(questerr.InProgress, questID, "This quest is already being completed."))
	}
	switch rules.Status(q, e.progress) {
	case types.StatusLocked:
		e.mu.Unlock()
		return Result{}, e.reject(questerr.New(questerr.Locked, questID, "This quest is locked. Complete the prerequisites first."))
	case types.StatusCompleted:
		e.mu.Unlock()
		return Result{}, e.reject(questerr.New(questerr.AlreadyCompleted, questID, "This quest is already completed."))
	}
	e.inflight[questID] = true
	env := protocol.Env{
		Ingestor:  e.ingestor,
		ScanDelay: e.scanDelay,
		Sleep:     e.sleep,
		Now:       e.now,
		NewID:     e.newID,
	}
	e.mu.Unlock()

	if _, scan := ev.(protocol.Scan); scan {
		e.logger.Debug("scanning", "quest", questID, "delay", e.scanDelay)
	}
	c, err := protocol.Dispatch(ctx, q, ev, env)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, questID)
	if err != nil {
		return Result{}, e.reject(err)
	}
	if _, scan := ev.(protocol.Scan); scan {
		e.notify(protocol.MsgScanned)
	}

	next, evs := ledger.Commit(e.cat, e.progress, c, ledger.Options{ActivityCapacity: e.activityCap})
	evs = append(evs, events.Dispatch(evs, events.Change{Catalog: e.cat, Before: e.progress, After: next}, events.Default)...)
	e.progress = next
	res := Result{
		Quest:     q,
		RewardXP:  c.Event.RewardXP,
		XP:        next.XP,
		Committed: true,
		Events:    evs,
		Unlocked:  events.Unlocked(evs),
		Message:   "Quest completed: " + q.Title,
	}
	e.logger.Info("quest completed", "quest", q.ID, "reward", c.Event.RewardXP, "xp", next.XP)
	e.notify(res.Message)

	if err := e.persistLocked(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// ToggleTrack pins or unpins an available quest.
func (e *Engine) ToggleTrack(ctx context.Context, questID string) (TrackResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, on, err := tracking.Toggle(e.cat, e.progress, questID)
	if err != nil {
		return TrackResult{}, e.reject(err)
	}
	e.progress = next
	q, _ := e.cat.Quest(questID)
	res := TrackResult{Quest: q, Tracked: on, Message: "Stopped tracking quest."}
	if on {
		res.Message = "Now tracking this quest."
	}
	e.logger.Info("tracking changed", "quest", questID, "tracked", on)
	e.notify(res.Message)

	if err := e.persistLocked(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// LastSaved reports when the store last wrote the snapshot. ok is false
// when nothing was saved or the store does not track it.
func (e *Engine) LastSaved(ctx context.Context) (time.Time, bool) {
	st, ok := e.store.(SaveStamper)
	if !ok {
		return time.Time{}, false
	}
	ts, ok, err := st.UpdatedAt(ctx)
	if err != nil {
		e.logger.Warn("read save time", "err", err)
		return time.Time{}, false
	}
	return ts, ok
}

// Save persists the current progress.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked(ctx)
}

// persistLocked writes the snapshot. The in-memory state is kept even
// when the write fails. Callers hold e.mu.
func (e *Engine) persistLocked(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	data, err := save.Save(e.progress)
	if err == nil {
		err = e.store.Save(ctx, data)
	}
	if err != nil {
		e.logger.Error("save progress", "err", err)
		e.notify("Progress could not be saved.")
		return questerr.Wrap(questerr.Persistence, "", err)
	}
	return nil
}

// reject reports a failed operation to the notifier and the debug log.
func (e *Engine) reject(err error) error {
	var qe *questerr.Error
	if errors.As(err, &qe) {
		e.logger.Debug("rejected", "quest", qe.QuestID, "kind", string(qe.Kind), "err", qe.Err)
		e.notify(qe.Text())
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Debug("submission abandoned", "err", err)
	} else {
		e.logger.Debug("rejected", "err", err)
		e.notify(err.Error())
	}
	return err
}

func (e *Engine) notify(msg string) {
	if e.notifier != nil && msg != "" {
		e.notifier.Notify(msg)
	}
}

func unknownQuest(id string) error {
	return questerr.New(questerr.UnknownQuest, id, "Quest not found.")
}
