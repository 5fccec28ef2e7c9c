package provider_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"image-job-service/internal/provider"
	"image-job-service/internal/refimage"
)

func geminiServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newGemini(url string) *provider.Gemini {
	return provider.NewGemini(provider.GeminiOptions{
		APIKey:  "k",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zerolog.Nop(),
	})
}

func inlineImage(data string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` +
		base64.StdEncoding.EncodeToString([]byte(data)) + `"}}]}}]}`
}

func TestGemini_OneCallPerImage(t *testing.T) {
	srv, calls := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		_, _ = w.Write([]byte(inlineImage("img")))
	})

	images, err := newGemini(srv.URL).Generate(context.Background(), provider.Request{
		Prompt: "a red bicycle in the rain",
		Format: "1:1",
		Count:  3,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	if atomic.LoadInt32(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", atomic.LoadInt32(calls))
	}
	if !strings.HasPrefix(images[0].Src(), "data:image/png;base64,") {
		t.Fatalf("expected data url, got %s", images[0].Src())
	}
}

func TestGemini_SendsReferencesAndAspect(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv, _ := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		bodies <- body
		_, _ = w.Write([]byte(inlineImage("img")))
	})

	_, err := newGemini(srv.URL).Generate(context.Background(), provider.Request{
		Prompt:     "combine these two sketches",
		Format:     "16:9",
		Count:      1,
		References: []refimage.Decoded{{Name: "a", MIME: "image/jpeg", Data: []byte{1, 2}}},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	raw, _ := json.Marshal(<-bodies)
	s := string(raw)
	if !strings.Contains(s, `"aspectRatio":"16:9"`) {
		t.Fatalf("aspect ratio not sent: %s", s)
	}
	if !strings.Contains(s, `"mimeType":"image/jpeg"`) || !strings.Contains(s, `"data":"AQI="`) {
		t.Fatalf("reference not sent inline: %s", s)
	}
}

func TestGemini_EmptyResponseIsError(t *testing.T) {
	srv, _ := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	})

	_, err := newGemini(srv.URL).Generate(context.Background(), provider.Request{Prompt: "x", Count: 1})
	if !errors.Is(err, provider.ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Provider != "gemini" {
		t.Fatalf("expected *provider.Error, got %T", err)
	}
}

func TestGemini_APIError(t *testing.T) {
	srv, _ := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted"}}`))
	})

	_, err := newGemini(srv.URL).Generate(context.Background(), provider.Request{Prompt: "x", Count: 2})
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestGemini_MalformedJSON(t *testing.T) {
	srv, _ := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		_, _ = w.Write([]byte(`{"candidates":`))
	})

	_, err := newGemini(srv.URL).Generate(context.Background(), provider.Request{Prompt: "x", Count: 1})
	if err == nil || !strings.Contains(err.Error(), "decode gemini response") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSynthetic_GeneratesPNGs(t *testing.T) {
	images, err := provider.NewSynthetic(0).Generate(context.Background(), provider.Request{
		Prompt: "a quiet harbor at sunrise",
		Format: "16:9",
		Count:  2,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(images[0].Data))
	if err != nil {
		t.Fatalf("not a png: %v", err)
	}
	if cfg.Width <= cfg.Height {
		t.Fatalf("expected landscape canvas for 16:9, got %dx%d", cfg.Width, cfg.Height)
	}
	if bytes.Equal(images[0].Data, images[1].Data) {
		t.Fatalf("expected distinct images per index")
	}
}

func TestSynthetic_ExtremeRatiosAreCapped(t *testing.T) {
	cases := map[string][2]int{
		"144115188075855873:1":   {256, 64},
		"1:144115188075855873":   {64, 256},
		"9223372036854775807:3":  {256, 64},
		"100:1":                  {256, 64},
		"4:3":                    {85, 64},
		"99999999999999999999:1": {64, 64}, // does not fit an int, falls back to square
		"garbage":                {64, 64},
	}
	for format, want := range cases {
		images, err := provider.NewSynthetic(0).Generate(context.Background(), provider.Request{
			Prompt: "a lighthouse in heavy fog",
			Format: format,
			Count:  1,
		})
		if err != nil {
			t.Fatalf("format %q: expected nil error, got %v", format, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(images[0].Data))
		if err != nil {
			t.Fatalf("format %q: not a png: %v", format, err)
		}
		if cfg.Width != want[0] || cfg.Height != want[1] {
			t.Fatalf("format %q: expected %dx%d, got %dx%d", format, want[0], want[1], cfg.Width, cfg.Height)
		}
	}
}

func TestSynthetic_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.NewSynthetic(time.Second).Generate(ctx, provider.Request{Prompt: "x", Count: 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
