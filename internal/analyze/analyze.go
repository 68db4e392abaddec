// Package analyze runs the full verification pipeline for a single claim:
// classify, detect, corroborate, arbitrate, and optionally explain.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrianta/hoaxcheck/internal/database"
	"github.com/andrianta/hoaxcheck/internal/detect"
	"github.com/andrianta/hoaxcheck/internal/explain"
	"github.com/andrianta/hoaxcheck/internal/related"
	"github.com/andrianta/hoaxcheck/internal/verdict"
	"github.com/andrianta/hoaxcheck/internal/verify"
)

// ErrEmptyText reports a request without analyzable text.
var ErrEmptyText = errors.New("no text provided")

// Report is the complete result of one analysis.
type Report struct {
	verdict.Verdict
	Model        detect.Signal   `json:"model"`
	Verification *verify.Result  `json:"verification"`
	Related      *related.Result `json:"related_news"`
	Explanation  string          `json:"explanation,omitempty"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

// Verifier corroborates a claim against trusted sources.
type Verifier interface {
	Verify(ctx context.Context, text string) (*verify.Result, error)
}

// Finder retrieves related coverage for a claim.
type Finder interface {
	Find(ctx context.Context, text string, maxArticles int) (*related.Result, error)
}

// maxRelatedArticles bounds the related-news section of a report.
const maxRelatedArticles = 5

// Analyzer wires the pipeline stages together.
type Analyzer struct {
	detector  detect.Detector
	verifier  Verifier
	finder    Finder
	explainer *explain.Explainer
	db        *database.DB
}

// New creates an analyzer. db may be nil to disable history recording;
// explainer may be nil to disable explanations.
func New(detector detect.Detector, verifier Verifier, finder Finder, explainer *explain.Explainer, db *database.DB) *Analyzer {
	return &Analyzer{
		detector:  detector,
		verifier:  verifier,
		finder:    finder,
		explainer: explainer,
		db:        db,
	}
}

// Analyze runs the pipeline for text. The classifier is a hard dependency:
// its failure aborts the analysis. Corroboration stages absorb their own
// source failures and always produce a result.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	if !a.detector.IsConfigured() {
		return nil, fmt.Errorf("%w: no API token configured", detect.ErrUnavailable)
	}

	signal, err := a.detector.Predict(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classifying text: %w", err)
	}

	// Corroboration and related coverage overlap on the trusted sources;
	// the shared per-domain throttle keeps the concurrent fan-out polite.
	var (
		vr *verify.Result
		rn *related.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vr, err = a.verifier.Verify(gctx, text)
		return err
	})
	g.Go(func() error {
		var err error
		rn, err = a.finder.Find(gctx, text, maxRelatedArticles)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gathering evidence: %w", err)
	}

	report := &Report{
		Verdict:      verdict.Arbitrate(signal, vr, rn),
		Model:        signal,
		Verification: vr,
		Related:      rn,
		AnalyzedAt:   time.Now().UTC(),
	}

	if a.explainer != nil && a.explainer.Enabled() {
		explanation, err := a.explainer.Explain(ctx, text, report.Verdict, rn.Articles)
		if err != nil {
			log.Printf("Could not generate explanation: %v", err)
		} else {
			report.Explanation = explanation
		}
	}

	if a.db != nil {
		if _, err := a.db.InsertAnalysis(text, report.Prediction, report.Confidence,
			report.Basis, report.Weight, vr.SourcesFound); err != nil {
			log.Printf("Could not record analysis: %v", err)
		}
	}

	return report, nil
}
