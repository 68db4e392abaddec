// Package related finds the most relevant corroborating articles from
// trusted outlets for display alongside a verdict. Claims that matched a
// misinformation override never get related articles: surfacing "related"
// coverage next to a flagged false claim only lends it credibility.
package related

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/andrianta/hoaxcheck/internal/catalog"
	"github.com/andrianta/hoaxcheck/internal/claim"
	"github.com/andrianta/hoaxcheck/internal/rank"
	"github.com/andrianta/hoaxcheck/internal/search"
)

const (
	maxSources         = 4
	perSource          = 3
	internationalSlots = 2
	maxFeedCandidates  = 5
)

// Result is the related-news bundle for one analysis.
type Result struct {
	Articles   []search.Article `json:"related_articles"`
	Keywords   []string         `json:"keywords_used"`
	TotalFound int              `json:"total_found"`
	Message    string           `json:"message"`
}

// Searcher is the subset of the search client used here. Wait gates the
// feed fetches on the same per-domain budget as the searches.
type Searcher interface {
	Search(ctx context.Context, src catalog.Source, keywords []string, maxResults int) []search.Article
	Wait(ctx context.Context, host string) error
}

// Finder locates related authentic coverage for a claim.
type Finder struct {
	classifier *claim.Classifier
	catalog    *catalog.Catalog
	searcher   Searcher
	feeds      *gofeed.Parser
	feedHTTP   *http.Client
	maxWorkers int
}

// New creates a Finder.
func New(classifier *claim.Classifier, cat *catalog.Catalog, searcher Searcher, maxWorkers int) *Finder {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Finder{
		classifier: classifier,
		catalog:    cat,
		searcher:   searcher,
		feeds:      gofeed.NewParser(),
		feedHTTP:   &http.Client{Timeout: 10 * time.Second},
		maxWorkers: maxWorkers,
	}
}

// Find returns up to maxArticles related articles, ranked by relevance and
// deduplicated by headline. The only error is context cancellation.
func (f *Finder) Find(ctx context.Context, text string, maxArticles int) (*Result, error) {
	desc := f.classifier.Classify(text)
	return f.FindForClaim(ctx, desc, maxArticles)
}

// FindForClaim runs the lookup for an already-classified claim.
func (f *Finder) FindForClaim(ctx context.Context, desc claim.Descriptor, maxArticles int) (*Result, error) {
	if len(desc.Keywords) == 0 {
		return &Result{
			Articles: []search.Article{},
			Keywords: []string{},
			Message:  "Tidak dapat mengekstrak kata kunci untuk pencarian berita terkait",
		}, nil
	}

	if desc.Suspicious() {
		return &Result{
			Articles: []search.Article{},
			Keywords: desc.Keywords,
			Message:  "Klaim ini terdeteksi sebagai potensi misinformasi. Tidak menampilkan artikel terkait untuk menghindari kebingungan.",
		}, nil
	}

	sources := f.catalog.PriorityOrder(maxSources, internationalSlots)
	results := make([][]search.Article, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxWorkers)
	for i, src := range sources {
		g.Go(func() error {
			found := f.searcher.Search(gctx, src, desc.Keywords, perSource)
			found = append(found, f.searchFeed(gctx, src, desc.Keywords)...)
			results[i] = found
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("related-news search aborted: %w", err)
	}

	var all []search.Article
	for _, r := range results {
		all = append(all, r...)
	}

	ranked := rank.Rank(all, desc.Keywords)
	total := len(ranked)
	if len(ranked) > maxArticles {
		ranked = ranked[:maxArticles]
	}

	return &Result{
		Articles:   ranked,
		Keywords:   desc.Keywords,
		TotalFound: total,
		Message:    fmt.Sprintf("Ditemukan %d berita terkait dari sumber terpercaya", total),
	}, nil
}

// searchFeed pulls recent entries from the source's RSS feed and keeps the
// ones that mention a claim keyword. Site search misses very fresh
// coverage; the feed closes that gap. Best effort: feed failures are
// absorbed like any other per-source failure.
func (f *Finder) searchFeed(ctx context.Context, src catalog.Source, keywords []string) []search.Article {
	if src.FeedURL == "" {
		return nil
	}

	feedURL, err := url.Parse(src.FeedURL)
	if err != nil {
		return nil
	}
	if err := f.searcher.Wait(ctx, feedURL.Host); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil
	}
	resp, err := f.feedHTTP.Do(req)
	if err != nil {
		log.Printf("Feed fetch failed for %s: %v", src.Name, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Feed returned %d for %s", resp.StatusCode, src.Name)
		return nil
	}

	feed, err := f.feeds.Parse(resp.Body)
	if err != nil {
		log.Printf("Feed parse failed for %s: %v", src.Name, err)
		return nil
	}

	var out []search.Article
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		if rank.Score(item.Title, keywords) == 0 {
			continue
		}
		excerpt := strings.TrimSpace(item.Description)
		if r := []rune(excerpt); len(r) > 200 {
			excerpt = string(r[:200]) + "..."
		}
		out = append(out, search.Article{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Source:  src.Name,
			Domain:  src.Domain,
			Excerpt: excerpt,
		})
		if len(out) == maxFeedCandidates {
			break
		}
	}
	return out
}
