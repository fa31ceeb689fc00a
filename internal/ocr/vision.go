// Package ocr recognizes text on uploaded receipt images through the Google
// Cloud Vision API. Only the raw recognized text is surfaced; structuring it
// is the extract package's job.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// TextDetector is the boundary the HTTP layer depends on.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

type Client struct {
	svc    *vision.Service
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("vision service: %w", err)
	}
	return &Client{svc: svc, logger: logger}, nil
}

// DetectText runs DOCUMENT_TEXT_DETECTION on one image and returns the full
// text annotation, or "" when the image contains no recognizable text.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	start := time.Now()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision annotate: %s", r.Error.Message)
	}

	text := ""
	if r.FullTextAnnotation != nil {
		text = r.FullTextAnnotation.Text
	}
	c.logger.Info("ocr.detect.ok",
		"image_bytes", len(image),
		"text_bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
