package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/types"
)

// bytesImage wraps in-memory image bytes.
func bytesImage(name string, data []byte) *Image {
	return &Image{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

var (
	locationQuest = types.Quest{ID: "q1", Title: "Find the Library", Type: types.QuestLocation, Reward: 40, Code: "LIB123"}
	journalQuest  = types.Quest{ID: "q3", Title: "Meet Your Advisor", Type: types.QuestJournal, Reward: 60}
	photoQuest    = types.Quest{ID: "q4", Title: "Discover Your Favorite Spot", Type: types.QuestPhoto, Reward: 50}
	finalQuest    = types.Quest{ID: "q6", Title: "Yearbook Entry", Type: types.QuestFinal, Reward: 80}
)

// fakeIngestor reads the image and returns a fixed-prefix reference.
type fakeIngestor struct {
	calls int
	err   error
}

func (f *fakeIngestor) Ingest(_ context.Context, img *Image) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	rc, err := img.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return "ref:" + string(data), nil
}

func testEnv(ing Ingestor) Env {
	fixed := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	return Env{
		Ingestor: ing,
		Sleep:    func(time.Duration) {},
		Now:      func() time.Time { return fixed },
		NewID:    func() string { return "id1" },
	}
}

func TestLocation_Code(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantKind questerr.Kind
	}{
		{"exact", "LIB123", ""},
		{"lower case", "lib123", ""},
		{"padded", "  Lib123 \n", ""},
		{"wrong", "LIB124", questerr.CodeMismatch},
		{"empty", "", questerr.MissingInput},
		{"blank", "   ", questerr.MissingInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Dispatch(context.Background(), locationQuest, Code{Value: tt.code}, testEnv(nil))
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c.Event.QuestID != "q1" || c.Event.RewardXP != 40 {
					t.Errorf("event = %+v", c.Event)
				}
				return
			}
			if got := questerr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestLocation_QuestWithoutCodeNeverMatches(t *testing.T) {
	q := locationQuest
	q.Code = ""
	_, err := Dispatch(context.Background(), q, Code{Value: "ANY"}, testEnv(nil))
	if questerr.KindOf(err) != questerr.CodeMismatch {
		t.Errorf("expected code mismatch, got %v", err)
	}
}

func TestLocation_ScanWaitsForSettleDelay(t *testing.T) {
	var slept time.Duration
	env := testEnv(nil)
	env.ScanDelay = DefaultScanDelay
	env.Sleep = func(d time.Duration) { slept = d }

	c, err := Dispatch(context.Background(), locationQuest, Scan{}, env)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if slept != DefaultScanDelay {
		t.Errorf("slept %v, want %v", slept, DefaultScanDelay)
	}
	if c.Event.QuestID != "q1" {
		t.Errorf("event quest = %q", c.Event.QuestID)
	}
	if c.Journal != nil || c.Memory != nil {
		t.Error("location completion should carry no entries")
	}
}

func TestLocation_RejectsOtherEvidence(t *testing.T) {
	_, err := Dispatch(context.Background(), locationQuest, JournalText{Text: "hi"}, testEnv(nil))
	if questerr.KindOf(err) != questerr.UnsupportedEvidence {
		t.Errorf("expected unsupported evidence, got %v", err)
	}
}

func TestJournal(t *testing.T) {
	c, err := Dispatch(context.Background(), journalQuest, JournalText{Text: "  Went well.  "}, testEnv(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Journal == nil {
		t.Fatal("expected journal entry")
	}
	if c.Journal.Text != "Went well." {
		t.Errorf("text = %q, want trimmed", c.Journal.Text)
	}
	if c.Journal.ID != "j_id1" || c.Journal.QuestID != "q3" {
		t.Errorf("entry = %+v", c.Journal)
	}
	if c.Event.RewardXP != 60 {
		t.Errorf("reward = %d", c.Event.RewardXP)
	}
}

func TestJournal_EmptyText(t *testing.T) {
	_, err := Dispatch(context.Background(), journalQuest, JournalText{Text: " \t "}, testEnv(nil))
	if questerr.KindOf(err) != questerr.MissingInput {
		t.Fatalf("expected missing input, got %v", err)
	}
	var qe *questerr.Error
	if !errors.As(err, &qe) || qe.Text() != MsgWriteJournal {
		t.Errorf("message = %v", err)
	}
}

func TestPhoto_CaptionFallsBackToTitle(t *testing.T) {
	ing := &fakeIngestor{}
	c, err := Dispatch(context.Background(), photoQuest, Photo{Image: bytesImage("cafe.png", []byte("px"))}, testEnv(ing))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Memory == nil {
		t.Fatal("expected memory entry")
	}
	if c.Memory.Caption != photoQuest.Title {
		t.Errorf("caption = %q, want quest title", c.Memory.Caption)
	}
	if c.Memory.ImageRef != "ref:px" {
		t.Errorf("image ref = %q", c.Memory.ImageRef)
	}
	if c.Memory.IsYearbook {
		t.Error("photo memory should not be a yearbook entry")
	}
	if ing.calls != 1 {
		t.Errorf("ingest calls = %d", ing.calls)
	}
}

func TestPhoto_MissingImage(t *testing.T) {
	ing := &fakeIngestor{}
	_, err := Dispatch(context.Background(), photoQuest, Photo{Caption: "Cozy"}, testEnv(ing))
	if questerr.KindOf(err) != questerr.MissingInput {
		t.Fatalf("expected missing input, got %v", err)
	}
	if ing.calls != 0 {
		t.Error("ingestor should not run without an image")
	}
}

func TestPhoto_IngestFailure(t *testing.T) {
	ing := &fakeIngestor{err: errors.New("not an image")}
	_, err := Dispatch(context.Background(), photoQuest, Photo{Image: bytesImage("x", nil)}, testEnv(ing))
	if questerr.KindOf(err) != questerr.MissingInput {
		t.Fatalf("expected missing input, got %v", err)
	}
}

func TestPhoto_IngestContextErrorsPassThrough(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		t.Run(cause.Error(), func(t *testing.T) {
			ing := &fakeIngestor{err: cause}
			_, err := Dispatch(context.Background(), photoQuest, Photo{Image: bytesImage("x", nil)}, testEnv(ing))
			if !errors.Is(err, cause) {
				t.Fatalf("err = %v, want %v", err, cause)
			}
			if kind := questerr.KindOf(err); kind != "" {
				t.Errorf("kind = %q, want unclassified", kind)
			}
		})
	}
}

func TestFinal_MarksYearbook(t *testing.T) {
	ing := &fakeIngestor{}
	ev := Yearbook{Caption: " Arrived ", Image: bytesImage("me.jpg", []byte("me")), Reflection: "  Hello future me. "}
	c, err := Dispatch(context.Background(), finalQuest, ev, testEnv(ing))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Memory.IsYearbook {
		t.Error("expected yearbook memory")
	}
	if c.Memory.Caption != "Arrived" {
		t.Errorf("caption = %q", c.Memory.Caption)
	}
	if c.Memory.YearbookText != "Hello future me." {
		t.Errorf("reflection = %q", c.Memory.YearbookText)
	}
	if c.Memory.ID != "m_id1" {
		t.Errorf("id = %q", c.Memory.ID)
	}
}

func TestFinal_ReflectionOptional(t *testing.T) {
	ev := Yearbook{Image: bytesImage("me.jpg", []byte("me"))}
	c, err := Dispatch(context.Background(), finalQuest, ev, testEnv(&fakeIngestor{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Memory.YearbookText != "" {
		t.Errorf("reflection = %q, want empty", c.Memory.YearbookText)
	}
}

func TestFinal_RejectsPlainPhoto(t *testing.T) {
	_, err := Dispatch(context.Background(), finalQuest, Photo{Image: bytesImage("a", []byte("a"))}, testEnv(&fakeIngestor{}))
	if questerr.KindOf(err) != questerr.UnsupportedEvidence {
		t.Errorf("expected unsupported evidence, got %v", err)
	}
}
