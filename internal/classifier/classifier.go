// Package classifier turns free-text commands into structured intents.
//
// Classification flow:
// 1. Ordered regex patterns (first match wins, confidence 0.8)
// 2. Keyword containment fallback (confidence 0.6)
// 3. Unknown (confidence 0.0)
package classifier

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Classifier maps lowercased text to an intent and confidence.
type Classifier struct {
	catalog *Catalog
	logger  *zap.Logger
}

// Config for the classifier and parser.
type Config struct {
	// Catalog defaults to DefaultCatalog()
	Catalog *Catalog

	// CountryCode is used to normalize domestic phone numbers
	CountryCode string

	Logger *zap.Logger
}

func (cfg *Config) withDefaults() *Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}
	if out.Catalog == nil {
		out.Catalog = DefaultCatalog()
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return &out
}

// NewClassifier creates a new intent classifier.
func NewClassifier(cfg *Config) *Classifier {
	cfg = cfg.withDefaults()
	return &Classifier{
		catalog: cfg.Catalog,
		logger:  cfg.Logger.Named("classifier"),
	}
}

// Catalog returns the catalog the classifier matches against.
func (c *Classifier) Catalog() *Catalog {
	return c.catalog
}

// Classify determines the intent of a message. It never panics; an internal
// failure is logged and reported as unknown.
func (c *Classifier) Classify(message string) (result intent.Intent, conf intent.Confidence) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classification failed", zap.String("panic", fmt.Sprint(r)))
			result, conf = intent.Unknown, intent.ConfidenceNone
		}
	}()

	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return intent.Unknown, intent.ConfidenceNone
	}

	for _, rule := range c.catalog.rules {
		if p, ok := rule.Match(msg); ok {
			c.logger.Debug("pattern match", zap.Stringer("intent", rule.Intent), zap.String("pattern", p.String()))
			return rule.Intent, intent.ConfidencePattern
		}
	}

	for _, kw := range c.catalog.keywords {
		if kw.Matches(msg) {
			c.logger.Debug("keyword match", zap.Stringer("intent", kw.Intent))
			return kw.Intent, intent.ConfidenceKeyword
		}
	}

	return intent.Unknown, intent.ConfidenceNone
}
