package protocol

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Evidence is the type-specific input submitted to complete a quest.
// The set of implementations is closed.
type Evidence interface {
	evidence()
}

// Scan is a simulated QR scan at the quest location.
type Scan struct{}

// Code is a code typed in at the quest location.
type Code struct {
	Value string
}

// JournalText is a free-text reflection.
type JournalText struct {
	Text string
}

// Photo is a captioned image. A blank caption falls back to the quest title.
type Photo struct {
	Caption string
	Image   *Image
}

// Yearbook is the capstone photo with an optional reflection.
type Yearbook struct {
	Caption    string
	Image      *Image
	Reflection string
}

func (Scan) evidence()        {}
func (Code) evidence()        {}
func (JournalText) evidence() {}
func (Photo) evidence()       {}
func (Yearbook) evidence()    {}

// Image is a raw image selected by the user, read lazily during ingestion.
type Image struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileImage references an image on disk.
func FileImage(path string) *Image {
	return &Image{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Ingestor converts a raw image into a storable reference. It may block.
type Ingestor interface {
	Ingest(ctx context.Context, img *Image) (string, error)
}
