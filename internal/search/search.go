// Package search executes site-search queries against configured outlets
// and extracts candidate article records from the result pages. Failures
// are absorbed per source: a dead outlet yields an empty result set, never
// an error, so one bad source cannot block the rest of an analysis.
package search

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/andrianta/hoaxcheck/internal/catalog"
	"github.com/andrianta/hoaxcheck/internal/config"
)

const (
	// Result-page markup varies wildly across outlets, so extraction walks
	// a cascade of selectors from specific to generic and accumulates
	// matches across all of them.
	minTitleLen   = 11
	minExcerptLen = 51
	maxExcerptLen = 200

	maxFactChecks = 2
)

var articleSelectors = []string{
	"article", ".article", ".news-item", ".search-result",
	"h2 a", "h3 a", ".title a", ".headline a",
}

var factCheckSelectors = []string{
	".fact-check", ".rating", ".verdict",
	"article", ".search-result", ".post",
}

var excerptSelectors = []string{
	".excerpt", ".summary", ".description", ".lead",
	"p", ".content", ".text",
}

// Article is one candidate corroborating article extracted from a search
// results page. Relevance is filled in later by ranking.
type Article struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Source    string  `json:"source"`
	Domain    string  `json:"domain"`
	Excerpt   string  `json:"excerpt"`
	Relevance float64 `json:"relevance_score"`
}

// FactCheck is a lighter-weight hit from a fact-checking site.
type FactCheck struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// Client fetches and extracts search results from outlets, throttled per
// external domain.
type Client struct {
	http      *http.Client
	userAgent string
	throttle  *Throttle
}

// NewClient creates a search client from configuration.
func NewClient(cfg config.Search) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		throttle:  NewThrottle(time.Duration(cfg.MinIntervalMS) * time.Millisecond),
	}
}

// Wait blocks until a request to host is permitted under the per-domain
// politeness interval. Supplemental fetches (RSS feeds, article bodies)
// go through this so they share one budget with the searches.
func (c *Client) Wait(ctx context.Context, host string) error {
	return c.throttle.Wait(ctx, host)
}

// Search queries one trusted source and returns up to maxResults candidate
// articles. Any fetch or parse failure returns an empty slice.
func (c *Client) Search(ctx context.Context, src catalog.Source, keywords []string, maxResults int) []Article {
	doc := c.fetchResults(ctx, src, keywords)
	if doc == nil {
		return nil
	}

	var articles []Article
	for _, selector := range articleSelectors {
		doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if i >= maxResults {
				return false
			}
			title, link, ok := extractTitleLink(sel)
			if !ok || len(title) < minTitleLen {
				return true
			}
			articles = append(articles, Article{
				Title:   title,
				Link:    resolveLink(link, src.Domain),
				Source:  src.Name,
				Domain:  src.Domain,
				Excerpt: extractExcerpt(sel),
			})
			return true
		})
	}

	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	return articles
}

// SearchFactChecker queries one fact-checking site and returns up to two
// hits. Only the first two selectors of the fact-check cascade are
// consulted; fact-check result pages are more uniform than news search.
func (c *Client) SearchFactChecker(ctx context.Context, src catalog.Source, keywords []string) []FactCheck {
	doc := c.fetchResults(ctx, src, keywords)
	if doc == nil {
		return nil
	}

	var checks []FactCheck
	for _, selector := range factCheckSelectors[:2] {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			anchor := sel.Find("a").First()
			if anchor.Length() == 0 {
				return
			}
			title := strings.TrimSpace(anchor.Text())
			link, _ := anchor.Attr("href")
			if title == "" || link == "" {
				return
			}
			checks = append(checks, FactCheck{
				Title:  title,
				Link:   resolveLink(link, src.Domain),
				Source: src.Name,
			})
		})
	}

	if len(checks) > maxFactChecks {
		checks = checks[:maxFactChecks]
	}
	return checks
}

// fetchResults performs the throttled GET and parses the result document.
// Returns nil on any failure; the failure is logged and absorbed.
func (c *Client) fetchResults(ctx context.Context, src catalog.Source, keywords []string) *goquery.Document {
	if len(keywords) == 0 {
		return nil
	}

	query := url.QueryEscape(strings.Join(keywords, " "))
	searchURL := strings.ReplaceAll(src.QueryTemplate, "{query}", query)

	if err := c.throttle.Wait(ctx, src.Domain); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		log.Printf("Bad search URL for %s: %v", src.Name, err)
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("Search failed for %s: %v", src.Name, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Search returned %d for %s", resp.StatusCode, src.Name)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("Parse failed for %s: %v", src.Name, err)
		return nil
	}
	return doc
}

// extractTitleLink pulls the headline text and href out of a matched
// element: the element itself when it is an anchor, otherwise its first
// descendant anchor.
func extractTitleLink(sel *goquery.Selection) (title, link string, ok bool) {
	if goquery.NodeName(sel) == "a" {
		title = strings.TrimSpace(sel.Text())
		link, _ = sel.Attr("href")
	} else {
		anchor := sel.Find("a").First()
		if anchor.Length() == 0 {
			return "", "", false
		}
		title = strings.TrimSpace(anchor.Text())
		link, _ = anchor.Attr("href")
	}
	if title == "" || link == "" {
		return "", "", false
	}
	return title, link, true
}

// extractExcerpt returns the first substantial text block under the
// element, truncated to maxExcerptLen. Best effort: empty when nothing
// substantial is found.
func extractExcerpt(sel *goquery.Selection) string {
	for _, selector := range excerptSelectors {
		text := strings.TrimSpace(sel.Find(selector).First().Text())
		if len(text) < minExcerptLen {
			continue
		}
		if r := []rune(text); len(r) > maxExcerptLen {
			return string(r[:maxExcerptLen]) + "..."
		}
		return text
	}
	return ""
}

// resolveLink makes a relative link absolute against the source domain.
func resolveLink(link, domain string) string {
	switch {
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "/"):
		return "https://" + domain + link
	default:
		return "https://" + domain + "/" + link
	}
}
