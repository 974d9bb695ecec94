// Package media turns selected images into storable references.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nathoo/questroux/engine/protocol"
)

// DefaultMaxBytes caps the size of an ingested image.
const DefaultMaxBytes = 5 << 20

// ErrTooLarge is returned for images over the size limit.
var ErrTooLarge = errors.New("image is too large")

// ErrNotImage is returned when the content is not a recognised image.
var ErrNotImage = errors.New("not an image")

// DataURI encodes images as base64 data URIs.
type DataURI struct {
	MaxBytes int64
}

// NewDataURI returns an ingestor with the given size cap. maxBytes <= 0
// uses DefaultMaxBytes.
func NewDataURI(maxBytes int64) *DataURI {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &DataURI{MaxBytes: maxBytes}
}

// Ingest reads img and returns "data:<mime>;base64,<payload>".
func (d *DataURI) Ingest(ctx context.Context, img *protocol.Image) (string, error) {
	if img == nil || img.Open == nil {
		return "", errors.New("no image selected")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rc, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", img.Name, err)
	}
	defer rc.Close()

	limit := d.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", img.Name, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%s: %w (limit %d bytes)", img.Name, ErrTooLarge, limit)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s: %w (%s)", img.Name, ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
