package classifier

import (
	"context"
	"strings"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

var _ interfaces.Classifier = (*Delegated)(nil)

// Delegated asks an external analyzer for a category and falls back to keyword matching
// for the commit when the analyzer fails or answers outside of the taxonomy.
type Delegated struct {
	analyzer interfaces.CommitAnalyzer
	fallback *Keyword
	log      logze.Logger

	calls     int
	fallbacks int
}

// NewDelegated creates a delegated classifier, nil fallback means the default keyword table
func NewDelegated(analyzer interfaces.CommitAnalyzer, fallback *Keyword) *Delegated {
	if fallback == nil {
		fallback, _ = NewKeyword(nil)
	}
	return &Delegated{
		analyzer: analyzer,
		fallback: fallback,
		log:      logze.With("component", "classifier", "mode", "delegated"),
	}
}

// Classify never fails, every error of the analyzer is logged and replaced by the keyword result
func (d *Delegated) Classify(ctx context.Context, message string) model.Classification {
	if strings.TrimSpace(message) == "" {
		return d.fallback.Classify(ctx, message)
	}

	d.calls++
	result, err := d.analyzer.ClassifyCommit(ctx, message)
	if err == nil && !result.Category.IsValid() {
		err = model.ErrUnknownCategory
	}
	if err != nil {
		d.fallbacks++
		out := d.fallback.Classify(ctx, message)
		d.log.Warn("classification service failed, using keyword fallback",
			"error", err,
			"message", lang.TruncateString(model.Commit{Message: message}.Subject(), 80),
			"category", out.Category,
		)
		return out
	}

	result.Source = model.SourceAgent
	return result
}

// Stats returns number of analyzer calls and number of keyword fallbacks
func (d *Delegated) Stats() (calls, fallbacks int) {
	return d.calls, d.fallbacks
}

func (d *Delegated) Name() string {
	return string(model.SourceAgent)
}
