// Package explain generates a short natural-language rationale for a
// verdict, grounded in the content of the corroborating articles. The
// explanation is best-effort: without a configured LLM backend the rest of
// the analysis is unaffected.
package explain

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/andrianta/hoaxcheck/internal/search"
	"github.com/andrianta/hoaxcheck/internal/verdict"
)

const (
	maxSourceArticles = 3
	maxArticleChars   = 2000
)

// Waiter gates outbound requests by destination host. The search client's
// per-domain throttle satisfies it, so article-body fetches share the same
// politeness budget as the searches.
type Waiter interface {
	Wait(ctx context.Context, host string) error
}

// Explainer produces verdict explanations from article evidence.
type Explainer struct {
	provider  Provider
	maxTokens int
	client    *http.Client
	userAgent string
	waiter    Waiter
}

// New creates an explainer. A nil provider is allowed and disables
// explanation generation; a nil waiter disables request gating.
func New(provider Provider, maxTokens int, userAgent string, waiter Waiter) *Explainer {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Explainer{
		provider:  provider,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		waiter:    waiter,
	}
}

// Enabled reports whether an explanation backend is available.
func (e *Explainer) Enabled() bool {
	return e.provider != nil
}

// Explain generates a markdown rationale for the verdict on claimText,
// grounded in the given related articles. Returns "" without error when no
// provider is configured or there is nothing to ground the explanation in.
func (e *Explainer) Explain(ctx context.Context, claimText string, v verdict.Verdict, articles []search.Article) (string, error) {
	if e.provider == nil || len(articles) == 0 {
		return "", nil
	}

	prompt := e.buildPrompt(ctx, claimText, v, articles)
	out, err := e.provider.Generate(ctx, prompt, e.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generating explanation: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (e *Explainer) buildPrompt(ctx context.Context, claimText string, v verdict.Verdict, articles []search.Article) string {
	var b strings.Builder

	b.WriteString("Kamu adalah asisten pemeriksa fakta. Jelaskan secara singkat dalam Bahasa Indonesia mengapa klaim berikut dinilai ")
	if v.Prediction == "Fake" {
		b.WriteString("hoaks")
	} else {
		b.WriteString("benar")
	}
	fmt.Fprintf(&b, " (kepercayaan %.0f%%, dasar keputusan: %s).\n\n", v.Confidence*100, v.Basis)
	fmt.Fprintf(&b, "Klaim: %q\n\n", claimText)

	evidence := e.collectEvidence(ctx, articles)
	if len(evidence) > 0 {
		b.WriteString("Bukti dari sumber terpercaya:\n\n")
		for i, ev := range evidence {
			fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, ev.title, ev.source, ev.content)
		}
	} else {
		b.WriteString("Tidak ditemukan artikel pendukung dari sumber terpercaya.\n\n")
	}

	b.WriteString("Tulis penjelasan ringkas (maksimal 3 paragraf) dalam format markdown. Sebutkan sumber yang relevan. Jangan mengarang fakta di luar bukti di atas.")
	return b.String()
}

type evidenceItem struct {
	title   string
	source  string
	content string
}

// collectEvidence fetches readable text for the top articles. Fetch
// failures degrade to the search excerpt.
func (e *Explainer) collectEvidence(ctx context.Context, articles []search.Article) []evidenceItem {
	if len(articles) > maxSourceArticles {
		articles = articles[:maxSourceArticles]
	}

	var out []evidenceItem
	for _, a := range articles {
		content := e.fetchArticleText(ctx, a.Link)
		if content == "" {
			content = a.Excerpt
		}
		if content == "" {
			continue
		}
		if len(content) > maxArticleChars {
			content = content[:maxArticleChars]
		}
		out = append(out, evidenceItem{title: a.Title, source: a.Source, content: content})
	}
	return out
}

func (e *Explainer) fetchArticleText(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if e.waiter != nil {
		if err := e.waiter.Wait(ctx, parsed.Host); err != nil {
			return ""
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("Could not fetch article %s: %v", link, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
