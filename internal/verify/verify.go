// Package verify corroborates a claim against trusted outlets and
// fact-checking sites and reduces the findings to a single verification
// score. The search strategy depends on the claim type: recognized
// misinformation patterns lean on fact-checkers, ordinary news leans on
// regional outlets.
package verify

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/andrianta/hoaxcheck/internal/catalog"
	"github.com/andrianta/hoaxcheck/internal/claim"
	"github.com/andrianta/hoaxcheck/internal/search"
)

const (
	articleWeight  = 0.2
	factCheckBonus = 0.1

	generalSources       = 3
	generalPerSource     = 2
	generalFactCheckers  = 2
	suspiciousSources    = 2
	suspiciousPerSource  = 1
	internationalInOrder = 1
)

// Result is the outcome of one verification run, read-only downstream.
type Result struct {
	Score        float64            `json:"verification_score"`
	Articles     []search.Article   `json:"trusted_articles"`
	FactChecks   []search.FactCheck `json:"fact_checks"`
	Keywords     []string           `json:"keywords_used"`
	ClaimType    string             `json:"claim_type"`
	IsQuestion   bool               `json:"is_question"`
	SourcesFound int                `json:"total_sources_found"`
	Message      string             `json:"message"`
}

// Searcher is the subset of the search client used for verification.
type Searcher interface {
	Search(ctx context.Context, src catalog.Source, keywords []string, maxResults int) []search.Article
	SearchFactChecker(ctx context.Context, src catalog.Source, keywords []string) []search.FactCheck
}

// Verifier runs the claim-type-dependent corroboration strategy.
type Verifier struct {
	classifier *claim.Classifier
	catalog    *catalog.Catalog
	searcher   Searcher
	maxWorkers int
}

// New creates a Verifier.
func New(classifier *claim.Classifier, cat *catalog.Catalog, searcher Searcher, maxWorkers int) *Verifier {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Verifier{
		classifier: classifier,
		catalog:    cat,
		searcher:   searcher,
		maxWorkers: maxWorkers,
	}
}

// Verify corroborates the claim text. Individual source failures degrade
// to missing evidence; the only error is context cancellation, in which
// case partial results are discarded.
func (v *Verifier) Verify(ctx context.Context, text string) (*Result, error) {
	desc := v.classifier.Classify(text)
	return v.VerifyClaim(ctx, desc)
}

// VerifyClaim runs verification for an already-classified claim.
func (v *Verifier) VerifyClaim(ctx context.Context, desc claim.Descriptor) (*Result, error) {
	if len(desc.Keywords) == 0 {
		return &Result{
			Keywords:   []string{},
			ClaimType:  desc.Type,
			IsQuestion: desc.IsQuestion,
			Message:    "Tidak dapat mengekstrak kata kunci untuk pencarian",
		}, nil
	}

	var (
		articles   []search.Article
		factChecks []search.FactCheck
		err        error
	)
	if desc.Suspicious() {
		log.Printf("Claim matched override rule %q; prioritizing fact-checkers", desc.RuleName)
		articles, factChecks, err = v.verifySuspicious(ctx, desc)
	} else {
		articles, factChecks, err = v.verifyGeneral(ctx, desc)
	}
	if err != nil {
		return nil, err
	}

	score := articleWeight * float64(len(articles))
	if len(factChecks) > 0 {
		score += factCheckBonus
	}
	score = clamp(score + desc.ConfidenceModifier)

	return &Result{
		Score:        score,
		Articles:     articles,
		FactChecks:   factChecks,
		Keywords:     desc.Keywords,
		ClaimType:    desc.Type,
		IsQuestion:   desc.IsQuestion,
		SourcesFound: len(articles),
		Message: fmt.Sprintf("Ditemukan %d artikel dari sumber terpercaya dan %d fact-check",
			len(articles), len(factChecks)),
	}, nil
}

// verifySuspicious queries every configured fact-checker with the claim
// keywords, plus a small number of regional outlets with the rule's pivot
// keywords. Fact-checkers are the authority on a flagged pattern; the
// pivot queries surface factual background instead of echoing the claim.
func (v *Verifier) verifySuspicious(ctx context.Context, desc claim.Descriptor) ([]search.Article, []search.FactCheck, error) {
	checkers := v.catalog.FactCheckers()
	regionals := v.catalog.Regional(catalog.RegionIndonesia, suspiciousSources)

	checkResults := make([][]search.FactCheck, len(checkers))
	articleResults := make([][]search.Article, len(regionals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxWorkers)

	for i, fc := range checkers {
		g.Go(func() error {
			checkResults[i] = v.searcher.SearchFactChecker(gctx, fc, desc.Keywords)
			return gctx.Err()
		})
	}
	pivot := desc.PivotKeywords
	if len(pivot) == 0 {
		pivot = desc.Keywords
	}
	for i, src := range regionals {
		g.Go(func() error {
			articleResults[i] = v.searcher.Search(gctx, src, pivot, suspiciousPerSource)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("verification aborted: %w", err)
	}
	return flatten(articleResults), flattenChecks(checkResults), nil
}

// verifyGeneral queries the priority outlets and the leading fact-checkers
// with the extracted keywords.
func (v *Verifier) verifyGeneral(ctx context.Context, desc claim.Descriptor) ([]search.Article, []search.FactCheck, error) {
	sources := v.catalog.PriorityOrder(generalSources, internationalInOrder)
	checkers := v.catalog.FactCheckers()
	if len(checkers) > generalFactCheckers {
		checkers = checkers[:generalFactCheckers]
	}

	articleResults := make([][]search.Article, len(sources))
	checkResults := make([][]search.FactCheck, len(checkers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxWorkers)

	for i, src := range sources {
		g.Go(func() error {
			articleResults[i] = v.searcher.Search(gctx, src, desc.Keywords, generalPerSource)
			return gctx.Err()
		})
	}
	for i, fc := range checkers {
		g.Go(func() error {
			checkResults[i] = v.searcher.SearchFactChecker(gctx, fc, desc.Keywords)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("verification aborted: %w", err)
	}
	return flatten(articleResults), flattenChecks(checkResults), nil
}

// flatten preserves configured source order regardless of completion order.
func flatten(results [][]search.Article) []search.Article {
	var out []search.Article
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func flattenChecks(results [][]search.FactCheck) []search.FactCheck {
	var out []search.FactCheck
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
