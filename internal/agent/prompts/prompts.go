package prompts

import (
	"fmt"
	"strings"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/lang"
)

var classificationSystemPrompt = `
You are an expert in C and systems programming who analyzes git commit messages.

Your task is to decide whether a commit fixes a bug and, if it does, which kind of bug it fixes.

RULES:
- Use only the categories from the list below, write the category name exactly as it is listed
- If the commit does not fix a bug (new feature, refactoring, documentation, formatting, tests), answer with "Non-Bug Fix"
- If several categories fit, choose the one that describes the root cause of the bug
- Answer with a single JSON object and nothing else, do not use markdown

CATEGORIES:
%s
`

var classificationUserPrompt = `
Classify the following commit message.

RESPONSE FORMAT:
{
  "has_bug_fix": true or false,
  "bug_category": "group of the category",
  "bug_type": "category name from the list",
  "confidence": number from 0.0 to 1.0,
  "reasoning": "one short sentence"
}

COMMIT MESSAGE:
%s
`

// Builder provides methods to build classification prompts
type Builder struct {
	categories       string
	maxMessageLength int
}

// NewBuilder creates a new prompt builder, messages longer than maxMessageLength runes are truncated
func NewBuilder(maxMessageLength int) *Builder {
	return &Builder{
		categories:       buildCategoryList(),
		maxMessageLength: maxMessageLength,
	}
}

// BuildClassificationPrompt creates a prompt that asks to assign a category to a commit message
func (b *Builder) BuildClassificationPrompt(message string) model.Prompt {
	message = strings.TrimSpace(message)
	if b.maxMessageLength > 0 {
		message = lang.TruncateString(message, b.maxMessageLength)
	}

	return model.Prompt{
		SystemPrompt: fmt.Sprintf(classificationSystemPrompt, b.categories),
		UserPrompt:   fmt.Sprintf(classificationUserPrompt, message),
	}
}

// buildCategoryList renders taxonomy grouped by category group keeping declaration order
func buildCategoryList() string {
	var (
		sb      strings.Builder
		current model.CategoryGroup
	)
	for _, c := range model.Taxonomy() {
		if g := c.Group(); g != current {
			current = g
			sb.WriteString("* " + string(g) + "\n")
		}
		sb.WriteString("  - " + string(c) + "\n")
	}
	return sb.String()
}
