// Package classify defines the contract for assigning a skill category
// to free-text issue descriptions.
//
// The production classifier is an external collaborator; any
// implementation satisfying Classifier is acceptable. The in-process
// default is a deterministic keyword matcher over the closed category
// set, which keeps submission-time shortlists reproducible in tests.
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/okian/triage/internal/domain/category"
)

// ErrUnavailable is returned when the classifier cannot produce a
// category. Callers surface it instead of guessing a default.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier assigns a category to free text.
type Classifier interface {
	// Predict returns the category for text, honoring ctx for cancellation.
	Predict(ctx context.Context, text string) (category.Category, error)
}

// Option applies a configuration option to the KeywordClassifier.
type Option func(*KeywordClassifier)

// WithRules replaces the default keyword table. Keys outside the closed
// category set are dropped.
func WithRules(rules map[category.Category][]string) Option {
	return func(c *KeywordClassifier) {
		c.rules = make(map[category.Category][]string)
		for cat, words := range rules {
			if !cat.Valid() || len(words) == 0 {
				continue
			}
			lowered := make([]string, len(words))
			for i, w := range words {
				lowered[i] = strings.ToLower(w)
			}
			c.rules[cat] = lowered
		}
	}
}

// WithFallback sets the category returned when no keyword matches.
func WithFallback(cat category.Category) Option {
	return func(c *KeywordClassifier) {
		if cat.Valid() {
			c.fallback = cat
		}
	}
}

// KeywordClassifier implements Classifier with token matching against a
// fixed per-category keyword table.
type KeywordClassifier struct {
	rules    map[category.Category][]string
	fallback category.Category
}

// NewKeywordClassifier creates a classifier with the default rule table.
func NewKeywordClassifier(opts ...Option) *KeywordClassifier {
	c := &KeywordClassifier{
		rules:    defaultRules(),
		fallback: category.API,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict picks the category with the most keyword hits in text.
// Ties break toward the lexically smallest category so two runs over
// the same text can never disagree.
func (c *KeywordClassifier) Predict(ctx context.Context, text string) (category.Category, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if len(c.rules) == 0 {
		return "", fmt.Errorf("no rules loaded: %w", ErrUnavailable)
	}

	hits := c.Hits(text)

	best := c.fallback
	bestCount := 0
	for _, cat := range category.All() {
		if n := hits[cat]; n > bestCount {
			best = cat
			bestCount = n
		}
	}
	return best, nil
}

// Hits counts keyword occurrences per category. Exposed so callers can
// show a confidence breakdown next to the prediction.
func (c *KeywordClassifier) Hits(text string) map[category.Category]int {
	tokens := tokenize(text)
	hits := make(map[category.Category]int, len(c.rules))
	for cat, words := range c.rules {
		n := 0
		for _, w := range words {
			n += tokens[w]
		}
		if n > 0 {
			hits[cat] = n
		}
	}
	return hits
}

// tokenize lowercases text and counts word occurrences. Whole-token
// matching avoids substring misfires ("ui" inside "guide").
func tokenize(text string) map[string]int {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f]++
	}
	return counts
}

func defaultRules() map[category.Category][]string {
	return map[category.Category][]string{
		category.API:            {"api", "endpoint", "rest", "http", "request", "response", "500", "payload"},
		category.Authentication: {"auth", "authentication", "login", "token", "password", "oauth", "session", "signin"},
		category.Database:       {"database", "db", "sql", "query", "migration", "schema", "transaction"},
		category.DevOps:         {"deploy", "deployment", "docker", "kubernetes", "pipeline", "ci", "terraform", "helm"},
		category.Documentation:  {"docs", "documentation", "readme", "typo", "guide", "changelog", "tutorial"},
		category.Performance:    {"slow", "latency", "performance", "memory", "cpu", "leak", "timeout", "throughput"},
		category.Security:       {"security", "vulnerability", "xss", "csrf", "injection", "cve", "exploit", "sanitize"},
		category.Testing:        {"test", "tests", "flaky", "coverage", "assertion", "mock", "fixture"},
		category.UI:             {"ui", "button", "css", "layout", "render", "screen", "frontend", "modal"},
	}
}
