package explain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andrianta/hoaxcheck/internal/search"
	"github.com/andrianta/hoaxcheck/internal/verdict"
)

type mockProvider struct {
	lastPrompt    string
	lastMaxTokens int
	response      string
	err           error
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.lastPrompt = prompt
	m.lastMaxTokens = maxTokens
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

func TestExplainWithoutProviderReturnsEmpty(t *testing.T) {
	e := New(nil, 512, "test-agent", nil)
	if e.Enabled() {
		t.Error("explainer without provider should not be enabled")
	}

	out, err := e.Explain(context.Background(), "klaim", verdict.Verdict{}, nil)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty explanation, got %q", out)
	}
}

func TestExplainBuildsPromptFromEvidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Artikel</title></head><body><article><p>` +
			strings.Repeat("Banjir melanda Jakarta sejak dini hari. ", 20) +
			`</p></article></body></html>`))
	}))
	defer srv.Close()

	p := &mockProvider{response: "## Penjelasan\n\nKlaim ini didukung bukti."}
	e := New(p, 256, "test-agent", nil)

	articles := []search.Article{
		{Title: "Banjir Jakarta meluas", Source: "Kompas", Link: srv.URL + "/a"},
	}
	v := verdict.Verdict{Prediction: "Real", Confidence: 0.76, Basis: verdict.BasisVerification}

	out, err := e.Explain(context.Background(), "banjir besar di jakarta", v, articles)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if out != "## Penjelasan\n\nKlaim ini didukung bukti." {
		t.Errorf("unexpected explanation %q", out)
	}
	if p.lastMaxTokens != 256 {
		t.Errorf("maxTokens = %d, want 256", p.lastMaxTokens)
	}
	for _, want := range []string{"banjir besar di jakarta", "Banjir Jakarta meluas", "Kompas", "benar"} {
		if !strings.Contains(p.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, p.lastPrompt)
		}
	}
}

type mockWaiter struct {
	hosts []string
}

func (m *mockWaiter) Wait(_ context.Context, host string) error {
	m.hosts = append(m.hosts, host)
	return nil
}

func TestExplainWaitsBeforeArticleFetch(t *testing.T) {
	var fetched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
		w.Write([]byte(`<html><body><article><p>` +
			strings.Repeat("Banjir melanda Jakarta sejak dini hari. ", 20) +
			`</p></article></body></html>`))
	}))
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	p := &mockProvider{response: "ok"}
	waiter := &mockWaiter{}
	e := New(p, 128, "test-agent", waiter)

	articles := []search.Article{
		{Title: "Banjir Jakarta meluas", Source: "Kompas", Link: srv.URL + "/a"},
	}
	if _, err := e.Explain(context.Background(), "klaim", verdict.Verdict{}, articles); err != nil {
		t.Fatalf("Explain: %v", err)
	}

	if !fetched {
		t.Fatal("expected the article body to be fetched")
	}
	if len(waiter.hosts) != 1 || waiter.hosts[0] != host {
		t.Errorf("expected one throttle wait for %q, got %v", host, waiter.hosts)
	}
}

func TestExplainFallsBackToExcerpt(t *testing.T) {
	p := &mockProvider{response: "ok"}
	e := New(p, 128, "test-agent", nil)

	// Unreachable link: evidence degrades to the search excerpt.
	articles := []search.Article{
		{Title: "Judul artikel yang panjang", Source: "Detik", Link: "http://127.0.0.1:1/x", Excerpt: "Ringkasan dari hasil pencarian."},
	}

	if _, err := e.Explain(context.Background(), "klaim", verdict.Verdict{Prediction: "Fake"}, articles); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(p.lastPrompt, "Ringkasan dari hasil pencarian.") {
		t.Errorf("prompt should contain excerpt fallback:\n%s", p.lastPrompt)
	}
	if !strings.Contains(p.lastPrompt, "hoaks") {
		t.Errorf("prompt should describe a Fake verdict:\n%s", p.lastPrompt)
	}
}

func TestExplainCapsEvidenceLength(t *testing.T) {
	p := &mockProvider{response: "ok"}
	e := New(p, 128, "test-agent", nil)

	long := strings.Repeat("x", maxArticleChars+500)
	articles := []search.Article{
		{Title: "Artikel sangat panjang sekali", Source: "Tempo", Excerpt: long},
	}

	if _, err := e.Explain(context.Background(), "klaim", verdict.Verdict{}, articles); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if strings.Contains(p.lastPrompt, long) {
		t.Error("prompt should not contain the full uncapped article text")
	}
	if !strings.Contains(p.lastPrompt, strings.Repeat("x", maxArticleChars)) {
		t.Error("prompt should contain the capped article text")
	}
}

func TestExplainWithoutArticlesReturnsEmpty(t *testing.T) {
	p := &mockProvider{response: "ok"}
	e := New(p, 128, "test-agent", nil)

	out, err := e.Explain(context.Background(), "klaim", verdict.Verdict{Prediction: "Fake"}, nil)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty explanation without grounding articles, got %q", out)
	}
	if p.lastPrompt != "" {
		t.Error("provider should not be called without grounding articles")
	}
}
