// Package catalog holds the static registry of trusted news outlets and
// fact-checking sites. The catalog is built once from configuration and
// never mutated, so it is safe to share across concurrent analyses.
package catalog

import (
	"strings"

	"github.com/andrianta/hoaxcheck/internal/config"
)

// RegionIndonesia sources are queried ahead of international ones: the
// service targets Indonesian-language claims, so regional coverage is the
// stronger corroboration signal.
const RegionIndonesia = "indonesia"

// Source is one queryable outlet.
type Source struct {
	Name          string
	Domain        string
	QueryTemplate string
	FeedURL       string
	Region        string
}

// Catalog is the full set of configured outlets.
type Catalog struct {
	trusted      []Source
	factCheckers []Source
}

// New builds a Catalog from configuration.
func New(cfg config.Catalog) *Catalog {
	c := &Catalog{}
	for _, s := range cfg.Trusted {
		c.trusted = append(c.trusted, fromConfig(s))
	}
	for _, s := range cfg.FactCheckers {
		c.factCheckers = append(c.factCheckers, fromConfig(s))
	}
	return c
}

func fromConfig(s config.Source) Source {
	return Source{
		Name:          s.Name,
		Domain:        strings.ToLower(s.Domain),
		QueryTemplate: s.QueryTemplate,
		FeedURL:       s.FeedURL,
		Region:        strings.ToLower(s.Region),
	}
}

// Trusted returns all trusted sources in configured order.
func (c *Catalog) Trusted() []Source {
	return c.trusted
}

// FactCheckers returns all fact-checking sources in configured order.
func (c *Catalog) FactCheckers() []Source {
	return c.factCheckers
}

// Regional returns up to n trusted sources from the given region.
func (c *Catalog) Regional(region string, n int) []Source {
	var out []Source
	for _, s := range c.trusted {
		if s.Region == region {
			out = append(out, s)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// PriorityOrder returns up to n trusted sources, regional ones first and
// then up to intl international sources. This mirrors the search strategy:
// local outlets are more likely to cover a local claim.
func (c *Catalog) PriorityOrder(n, intl int) []Source {
	var out []Source
	for _, s := range c.trusted {
		if s.Region == RegionIndonesia {
			out = append(out, s)
		}
	}
	added := 0
	for _, s := range c.trusted {
		if s.Region != RegionIndonesia && added < intl {
			out = append(out, s)
			added++
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
