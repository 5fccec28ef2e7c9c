// Package refimage converts reference images between uploads, data URLs and
// the raw bytes a provider needs.
package refimage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"image-job-service/internal/entity"
)

var ErrMalformedDataURL = errors.New("malformed data url")

// Decoded is a reference with its payload ready for a provider call.
type Decoded struct {
	Name string
	MIME string
	Data []byte
}

// ParseDataURL splits data:<mime>;base64,<payload> and decodes the payload.
func ParseDataURL(raw string) (mime string, data []byte, err error) {
	raw = strings.TrimSpace(raw)
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrMalformedDataURL)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrMalformedDataURL)
	}
	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedDataURL)
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, fmt.Errorf("%w: %q is not an image type", ErrMalformedDataURL, mime)
	}
	if payload == "" {
		return "", nil, fmt.Errorf("%w: empty payload", ErrMalformedDataURL)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	return mime, data, nil
}

func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode parses every reference, skipping the malformed ones.
func Decode(refs []entity.Reference) (out []Decoded, skipped int) {
	for _, r := range refs {
		mime, data, err := ParseDataURL(r.DataURL)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, Decoded{Name: r.Name, MIME: mime, Data: data})
	}
	return out, skipped
}

// FromUpload reads a multipart file into a reference. The declared content
// type wins when it is an image type; otherwise it is sniffed.
func FromUpload(fh *multipart.FileHeader) (entity.Reference, error) {
	f, err := fh.Open()
	if err != nil {
		return entity.Reference{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entity.Reference{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(data) == 0 {
		return entity.Reference{}, fmt.Errorf("upload %s is empty", fh.Filename)
	}

	mime := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return entity.Reference{}, fmt.Errorf("upload %s is not an image (%s)", fh.Filename, mime)
	}

	return entity.Reference{Name: fh.Filename, DataURL: EncodeDataURL(mime, data)}, nil
}
