package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash-image"
)

type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Gemini generates images through the generateContent endpoint. One call
// yields one image, so Count calls are made per job.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func NewGemini(opts GeminiOptions) *Gemini {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		log:        opts.Logger,
	}
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, req Request) ([]Image, error) {
	count := req.Count
	if count <= 0 {
		count = 1
	}

	payload := g.buildRequest(req)
	var images []Image
	for i := 0; i < count; i++ {
		var resp geminiResponse
		if err := g.invoke(ctx, payload, &resp); err != nil {
			return nil, &Error{Provider: "gemini", Err: err}
		}
		got, err := decodeImages(resp)
		if err != nil {
			return nil, &Error{Provider: "gemini", Err: err}
		}
		images = append(images, got...)
		if len(images) >= count {
			break
		}
	}

	if len(images) == 0 {
		return nil, &Error{Provider: "gemini", Err: ErrNoImages}
	}
	if len(images) > count {
		images = images[:count]
	}

	g.log.Debug().
		Str("job_id", req.JobID).
		Str("model", g.model).
		Int("images", len(images)).
		Msg("gemini: generated images")

	return images, nil
}

func (g *Gemini) buildRequest(req Request) geminiRequest {
	parts := []geminiPart{{Text: strings.TrimSpace(req.Prompt)}}
	for _, ref := range req.References {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: ref.MIME,
			Data:     base64.StdEncoding.EncodeToString(ref.Data),
		}})
	}

	cfg := &geminiGenerationConfig{ResponseModalities: []string{"IMAGE"}}
	if f := strings.TrimSpace(req.Format); f != "" {
		cfg.ImageConfig = &geminiImageConfig{AspectRatio: f}
	}

	return geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	}
}

func (g *Gemini) invoke(ctx context.Context, payload geminiRequest, out *geminiResponse) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if msg := strings.TrimSpace(string(data)); msg != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeImages(resp geminiResponse) ([]Image, error) {
	var images []Image
	var lastErr error
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				lastErr = fmt.Errorf("decode inline data: %w", err)
				continue
			}
			mime := p.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			images = append(images, Image{MIME: mime, Data: data})
		}
	}
	if len(images) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return images, nil
}

var _ Generator = (*Gemini)(nil)
