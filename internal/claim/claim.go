// Package claim turns raw news text into a structured claim descriptor:
// search keywords, a claim type, a question flag, and a confidence
// modifier that feeds into verification scoring.
package claim

import (
	"strings"
	"unicode"

	"github.com/andrianta/hoaxcheck/internal/config"
)

const (
	// TypeGeneral is ordinary news content.
	TypeGeneral = "general"

	maxKeywords = 5
	minTokenLen = 4
)

// Descriptor is the structured result of classifying a claim. It is
// derived solely from the input text and immutable once produced.
type Descriptor struct {
	Keywords           []string
	Type               string
	RuleName           string
	PivotKeywords      []string
	IsQuestion         bool
	ConfidenceModifier float64
}

// Suspicious reports whether the claim matched an override rule rather
// than generic keyword extraction.
func (d Descriptor) Suspicious() bool {
	return d.Type != TypeGeneral
}

// Classifier extracts claim descriptors using configured lexicons.
type Classifier struct {
	stopWords          map[string]struct{}
	questionIndicators []string
	overrides          []config.OverrideRule
}

// New creates a Classifier from the claim lexicon configuration.
func New(cfg config.Claim) *Classifier {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Classifier{
		stopWords:          stop,
		questionIndicators: cfg.QuestionIndicators,
		overrides:          cfg.Overrides,
	}
}

// Classify produces the Descriptor for the given text. Deterministic:
// identical input always yields an identical descriptor.
func (c *Classifier) Classify(text string) Descriptor {
	lower := strings.ToLower(text)
	isQuestion := containsAny(lower, c.questionIndicators)

	// Override rules win over generic extraction: a recognized
	// misinformation pattern gets a hand-tuned fact-check query.
	for _, rule := range c.overrides {
		if !containsAny(lower, rule.Markers) {
			continue
		}
		if rule.RequiresQuestion && !isQuestion {
			continue
		}
		return Descriptor{
			Keywords:           append([]string(nil), rule.Keywords...),
			Type:               rule.Type,
			RuleName:           rule.Name,
			PivotKeywords:      append([]string(nil), rule.PivotKeywords...),
			IsQuestion:         isQuestion,
			ConfidenceModifier: rule.ConfidenceModifier,
		}
	}

	return Descriptor{
		Keywords:   c.extractKeywords(lower),
		Type:       TypeGeneral,
		IsQuestion: isQuestion,
	}
}

// extractKeywords strips punctuation, drops stop words and short tokens,
// and keeps the first maxKeywords surviving tokens in document order.
func (c *Classifier) extractKeywords(lower string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return ' '
	}, lower)

	var keywords []string
	for _, tok := range strings.Fields(clean) {
		if len(tok) < minTokenLen {
			continue
		}
		if _, stop := c.stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
