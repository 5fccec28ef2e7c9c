package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"
)

// Synthetic renders deterministic placeholder PNGs locally. It keeps the
// whole pipeline usable without a provider key.
type Synthetic struct {
	latency time.Duration
}

func NewSynthetic(latency time.Duration) *Synthetic {
	return &Synthetic{latency: latency}
}

func (s *Synthetic) Generate(ctx context.Context, req Request) ([]Image, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, &Error{Provider: "synthetic", Err: ctx.Err()}
		}
	}

	w, h := dimensions(req.Format)
	images := make([]Image, count)
	for i := range images {
		seed := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", req.Prompt, req.Format, i)))
		data, err := render(w, h, seed)
		if err != nil {
			return nil, &Error{Provider: "synthetic", Err: err}
		}
		images[i] = Image{MIME: "image/png", Data: data}
	}
	return images, nil
}

// dimensions maps an aspect ratio label like "16:9" to a small canvas. The
// long side is capped at 4x the short one.
func dimensions(format string) (int, int) {
	const (
		base    = 64
		maxSide = base * 4
	)
	var a, b int
	if _, err := fmt.Sscanf(strings.TrimSpace(format), "%d:%d", &a, &b); err != nil || a <= 0 || b <= 0 {
		return base, base
	}
	// ratio in float64 so huge operands cannot overflow base*a
	r := float64(a) / float64(b)
	if r >= 1 {
		return int(min(base*r, maxSide)), base
	}
	return base, int(min(base/r, maxSide))
}

func render(w, h int, seed [32]byte) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	from := color.RGBA{R: seed[0], G: seed[1], B: seed[2], A: 0xff}
	to := color.RGBA{R: seed[3], G: seed[4], B: seed[5], A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(w+h)
			img.Set(x, y, color.RGBA{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
				A: 0xff,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

var _ Generator = (*Synthetic)(nil)
