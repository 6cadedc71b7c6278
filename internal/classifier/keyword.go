package classifier

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/commitminer/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
)

var _ interfaces.Classifier = (*Keyword)(nil)

// Keyword assigns the first category in taxonomy order whose keyword occurs in the message.
// A message without any keyword is a Non-Bug Fix.
type Keyword struct {
	rules []Rule
}

// NewKeyword validates rules and builds a keyword classifier, empty rules mean DefaultRules.
// Rules are evaluated in taxonomy order whatever order they were declared in.
func NewKeyword(rules []Rule) (*Keyword, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	out := make([]Rule, 0, len(rules))
	seen := make(map[model.Category]struct{}, len(rules))

	for i, rule := range rules {
		category, err := model.ParseCategory(string(rule.Category))
		if err != nil {
			return nil, errm.Wrap(err, "rule "+strconv.Itoa(i))
		}
		if category == model.CategoryNonBugFix {
			return nil, errm.Errorf("rule %d: %s is a fallback category and cannot have keywords", i, category)
		}
		if _, ok := seen[category]; ok {
			return nil, errm.Errorf("rule %d: duplicate category %s", i, category)
		}
		seen[category] = struct{}{}

		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || slices.Contains(keywords, kw) {
				continue
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, errm.Errorf("rule %d: category %s has no keywords", i, category)
		}

		out = append(out, Rule{Category: category, Keywords: keywords})
	}

	slices.SortStableFunc(out, func(a, b Rule) int {
		return cmp.Compare(a.Category.Index(), b.Category.Index())
	})

	return &Keyword{rules: out}, nil
}

// Classify never fails and gives the same answer for the same message
func (k *Keyword) Classify(_ context.Context, message string) model.Classification {
	return model.Classification{
		Category:   k.Match(message),
		Source:     model.SourceKeyword,
		Confidence: 1,
	}
}

// Match returns the category of the message
func (k *Keyword) Match(message string) model.Category {
	message = strings.ToLower(message)
	if strings.TrimSpace(message) == "" {
		return model.CategoryNonBugFix
	}
	for _, rule := range k.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(message, kw) {
				return rule.Category
			}
		}
	}
	return model.CategoryNonBugFix
}

// Rules returns a copy of the normalized rules in evaluation order
func (k *Keyword) Rules() []Rule {
	out := make([]Rule, len(k.rules))
	for i, r := range k.rules {
		out[i] = Rule{Category: r.Category, Keywords: slices.Clone(r.Keywords)}
	}
	return out
}

func (k *Keyword) Name() string {
	return string(model.SourceKeyword)
}
