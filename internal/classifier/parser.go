package classifier

import (
	"strings"

	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/contact"
	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Parser is the facade that classifies a line and extracts its parameters.
type Parser struct {
	classifier *Classifier
	extractor  *Extractor
	logger     *zap.Logger
}

// NewParser creates a parser. A nil config uses the default catalog and
// country code.
func NewParser(cfg *Config) *Parser {
	cfg = cfg.withDefaults()
	return &Parser{
		classifier: NewClassifier(cfg),
		extractor:  NewExtractor(cfg.Catalog, contact.NewExtractor(cfg.CountryCode), cfg.Logger),
		logger:     cfg.Logger.Named("parser"),
	}
}

// Classifier returns the underlying classifier.
func (p *Parser) Classifier() *Classifier {
	return p.classifier
}

// Extractor returns the underlying parameter extractor.
func (p *Parser) Extractor() *Extractor {
	return p.extractor
}

// Parse turns one line of text into a ParsedCommand. Blank input and
// unrecognized text yield an unknown command with no parameters.
func (p *Parser) Parse(text string) intent.ParsedCommand {
	if strings.TrimSpace(text) == "" {
		return intent.Unrecognized(text)
	}

	i, conf := p.classifier.Classify(text)
	if i == intent.Unknown {
		p.logger.Debug("no intent matched", zap.String("text", text))
		return intent.Unrecognized(text)
	}

	cmd := intent.New(i, conf, p.extractor.Extract(text, i), text)
	p.logger.Debug("parsed command", zap.Stringer("command", cmd))
	return cmd
}
