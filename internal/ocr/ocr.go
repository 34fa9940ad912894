// Package ocr adapts an external OCR engine behind a text-in/text-out
// contract. The engine is a black box: the extracted text carries no
// guaranteed structure and an empty result is a valid output, not an error.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedMediaType is returned before any engine I/O when the
	// input is not an image.
	ErrUnsupportedMediaType = errors.New("unsupported media type: expected an image")

	// ErrExtractionFailed wraps any engine-side or transport failure,
	// including an expired deadline.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// TextExtractor converts an image of handwriting into raw text.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Config holds the OCR engine connection settings.
type Config struct {
	URL      string
	Language string
	Timeout  time.Duration
}

type httpExtractor struct {
	client   *http.Client
	url      string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHTTPExtractor returns a TextExtractor backed by an HTTP OCR engine.
func NewHTTPExtractor(cfg Config, logger *slog.Logger) TextExtractor {
	return &httpExtractor{
		client:   &http.Client{},
		url:      cfg.URL,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (e *httpExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	mediaType := mimetype.Detect(image)
	if !strings.HasPrefix(mediaType.String(), "image/") {
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedMediaType, mediaType.String())
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", mediaType.String())
	req.Header.Set("Accept-Language", e.language)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("OCR request failed", "error", err, "url", e.url)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrExtractionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("OCR engine returned error status",
			"status", resp.StatusCode,
			"body", string(body))
		return "", fmt.Errorf("%w: engine status %d", ErrExtractionFailed, resp.StatusCode)
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrExtractionFailed, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrExtractionFailed, parsed.Error)
	}

	e.logger.Debug("OCR extraction complete",
		"duration", time.Since(start).String(),
		"chars", len(parsed.Text))

	// Empty text still flows downstream; the extractor makes no quality
	// promises.
	return parsed.Text, nil
}
