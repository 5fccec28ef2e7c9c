// Package provider talks to image generation backends.
package provider

import (
	"context"
	"errors"
	"fmt"

	"image-job-service/internal/refimage"
)

var ErrNoImages = errors.New("provider returned no images")

// Request is what a Generator needs for one job.
type Request struct {
	JobID      string
	Prompt     string
	Format     string
	Count      int
	References []refimage.Decoded
}

// Image is one generated result, either hosted (URL) or inline (Data).
type Image struct {
	URL  string
	MIME string
	Data []byte
}

// Src returns what the job stores: the URL when hosted, a data URL otherwise.
func (i Image) Src() string {
	if i.URL != "" {
		return i.URL
	}
	return refimage.EncodeDataURL(i.MIME, i.Data)
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Image, error)
}

// Error wraps any failure reported by a provider.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
