// Package protocol validates completion evidence per quest type and turns a
// valid submission into a Completion. It never touches progress: the caller
// hands the result to the ledger.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/types"
)

// DefaultScanDelay is how long a simulated QR scan takes to settle.
const DefaultScanDelay = 1500 * time.Millisecond

// User-facing validation messages.
const (
	MsgEnterCode     = "Please enter a code."
	MsgCodeMismatch  = "That code doesn't match this quest."
	MsgWriteJournal  = "Please write a short journal entry first."
	MsgChoosePhoto   = "Please choose a photo."
	MsgUnreadable    = "Could not read that photo."
	MsgUseScanOrCode = "Use the QR or code options to complete this quest."
	MsgScanned       = "QR scanned successfully (simulated)."
)

// Env supplies the collaborators and clocks a dispatch may need.
type Env struct {
	Ingestor  Ingestor
	ScanDelay time.Duration
	Sleep     func(time.Duration)
	Now       func() time.Time
	NewID     func() string
}

// Dispatch validates ev against q and builds the completion to commit. The
// caller is responsible for checking that q is Available first.
func Dispatch(ctx context.Context, q types.Quest, ev Evidence, env Env) (types.Completion, error) {
	switch q.Type {
	case types.QuestLocation:
		return dispatchLocation(q, ev, env)
	case types.QuestJournal:
		return dispatchJournal(q, ev, env)
	case types.QuestPhoto:
		photo, ok := ev.(Photo)
		if !ok {
			return types.Completion{}, unsupported(q, ev)
		}
		return dispatchMemory(ctx, q, photo.Caption, photo.Image, "", env)
	case types.QuestFinal:
		yb, ok := ev.(Yearbook)
		if !ok {
			return types.Completion{}, unsupported(q, ev)
		}
		return dispatchMemory(ctx, q, yb.Caption, yb.Image, strings.TrimSpace(yb.Reflection), env)
	default:
		return types.Completion{}, questerr.New(questerr.UnsupportedEvidence, q.ID, "unknown quest type "+string(q.Type))
	}
}

func dispatchLocation(q types.Quest, ev Evidence, env Env) (types.Completion, error) {
	switch ev := ev.(type) {
	case Scan:
		sleep := env.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		delay := env.ScanDelay
		if delay < 0 {
			delay = 0
		}
		// The scan has no failure mode and cannot be cancelled once started.
		sleep(delay)
		return completion(q), nil
	case Code:
		entered := strings.ToUpper(strings.TrimSpace(ev.Value))
		if entered == "" {
			return types.Completion{}, questerr.New(questerr.MissingInput, q.ID, MsgEnterCode)
		}
		if q.Code == "" || entered != strings.ToUpper(q.Code) {
			return types.Completion{}, questerr.New(questerr.CodeMismatch, q.ID, MsgCodeMismatch)
		}
		return completion(q), nil
	default:
		return types.Completion{}, questerr.New(questerr.UnsupportedEvidence, q.ID, MsgUseScanOrCode)
	}
}

func dispatchJournal(q types.Quest, ev Evidence, env Env) (types.Completion, error) {
	jt, ok := ev.(JournalText)
	if !ok {
		return types.Completion{}, unsupported(q, ev)
	}
	text := strings.TrimSpace(jt.Text)
	if text == "" {
		return types.Completion{}, questerr.New(questerr.MissingInput, q.ID, MsgWriteJournal)
	}
	c := completion(q)
	c.Journal = &types.JournalEntry{
		ID:        "j_" + newID(env),
		QuestID:   q.ID,
		Text:      text,
		CreatedAt: now(env),
	}
	return c, nil
}

func dispatchMemory(ctx context.Context, q types.Quest, caption string, img *Image, reflection string, env Env) (types.Completion, error) {
	if img == nil || img.Open == nil {
		return types.Completion{}, questerr.New(questerr.MissingInput, q.ID, MsgChoosePhoto)
	}
	if env.Ingestor == nil {
		return types.Completion{}, questerr.Wrap(questerr.MissingInput, q.ID, errors.New("no image ingestor configured"))
	}
	ref, err := env.Ingestor.Ingest(ctx, img)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.Completion{}, fmt.Errorf("ingest image for %s: %w", q.ID, err)
	}
	if err != nil {
		return types.Completion{}, &questerr.Error{Kind: questerr.MissingInput, QuestID: q.ID, Message: MsgUnreadable, Err: err}
	}

	caption = strings.TrimSpace(caption)
	if caption == "" {
		caption = q.Title
	}
	c := completion(q)
	c.Memory = &types.MemoryEntry{
		ID:           "m_" + newID(env),
		QuestID:      q.ID,
		Caption:      caption,
		ImageRef:     ref,
		CreatedAt:    now(env),
		IsYearbook:   q.Type == types.QuestFinal,
		YearbookText: reflection,
	}
	return c, nil
}

func completion(q types.Quest) types.Completion {
	return types.Completion{Event: types.CompletionEvent{QuestID: q.ID, RewardXP: q.Reward}}
}

func unsupported(q types.Quest, ev Evidence) error {
	return questerr.New(questerr.UnsupportedEvidence, q.ID,
		"This "+string(q.Type)+" quest can't be completed with "+evidenceName(ev)+".")
}

func evidenceName(ev Evidence) string {
	switch ev.(type) {
	case Scan:
		return "a QR scan"
	case Code:
		return "a code"
	case JournalText:
		return "a journal entry"
	case Photo:
		return "a photo"
	case Yearbook:
		return "a yearbook entry"
	default:
		return "that"
	}
}

func now(env Env) time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

func newID(env Env) string {
	if env.NewID != nil {
		return env.NewID()
	}
	return uuid.NewString()
}
