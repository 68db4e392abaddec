// Package detect wraps the hosted text-classification model that supplies
// the baseline fake/real signal. The classifier is a hard dependency of an
// analysis: when it cannot be reached the whole request fails rather than
// silently degrading to corroboration-only output.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andrianta/hoaxcheck/internal/config"
)

// Canonical prediction labels.
const (
	PredictionReal = "Real"
	PredictionFake = "Fake"
)

// ErrUnavailable reports that the classification backend could not produce
// a usable signal. Callers treat it as fatal for the current analysis.
var ErrUnavailable = errors.New("classifier unavailable")

// Signal is the model's opinion of a text, before any arbitration.
type Signal struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Detector produces a classification signal for a claim text.
type Detector interface {
	Predict(ctx context.Context, text string) (Signal, error)
	IsConfigured() bool
}

// HTTPDetector calls a hosted inference endpoint that serves a sequence
// classification model.
type HTTPDetector struct {
	endpoint string
	model    string
	token    string
	maxInput int
	http     *http.Client
}

// NewHTTPDetector builds a detector from the detector config section. The
// API token is read from the environment at construction time.
func NewHTTPDetector(cfg config.Detector) *HTTPDetector {
	return &HTTPDetector{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		token:    os.Getenv(cfg.APIKeyEnv),
		maxInput: cfg.MaxInputBytes,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether an API token is present.
func (d *HTTPDetector) IsConfigured() bool {
	return d.token != ""
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Predict classifies text, truncating it to the configured input budget.
// Any transport, status, or decoding failure is reported as ErrUnavailable.
func (d *HTTPDetector) Predict(ctx context.Context, text string) (Signal, error) {
	if d.maxInput > 0 && len(text) > d.maxInput {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := d.maxInput
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return Signal{}, fmt.Errorf("encoding inference request: %w", err)
	}

	url := d.endpoint + "/" + d.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Signal{}, fmt.Errorf("building inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Signal{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	// The endpoint returns a nested array of label scores, one inner
	// slice per input.
	var results [][]inferenceLabel
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Signal{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if len(results) == 0 || len(results[0]) == 0 {
		return Signal{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	best := results[0][0]
	for _, l := range results[0][1:] {
		if l.Score > best.Score {
			best = l
		}
	}

	return Signal{Prediction: normalizeLabel(best.Label), Confidence: best.Score}, nil
}

// normalizeLabel maps model label conventions onto the canonical pair.
func normalizeLabel(label string) string {
	switch strings.ToUpper(label) {
	case "FAKE", "LABEL_1":
		return PredictionFake
	default:
		return PredictionReal
	}
}
