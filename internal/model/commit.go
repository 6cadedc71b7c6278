package model

import (
	"strings"
	"time"
)

// Commit represents a git commit
type Commit struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`

	// RepositoryID is a back reference to the repository the commit was fetched from
	RepositoryID string `json:"repository_id"`
}

// Subject returns the first line of the commit message
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(subject)
}

// ClassificationSource tells which classifier assigned a category
type ClassificationSource string

const (
	SourceKeyword ClassificationSource = "keyword"
	SourceAgent   ClassificationSource = "agent"
)

// Classification is a result of assigning a category to a commit message
type Classification struct {
	Category   Category
	Source     ClassificationSource
	Confidence float64
	Reasoning  string
}

// ClassifiedCommit is a commit with its assigned category, it is a row of the output tables
type ClassifiedCommit struct {
	Commit
	Category   Category
	Source     ClassificationSource
	Confidence float64
	Reasoning  string
}

// NewClassifiedCommit attaches a classification result to a commit
func NewClassifiedCommit(commit Commit, result Classification) ClassifiedCommit {
	return ClassifiedCommit{
		Commit:   commit,
		Category:   result.Category,
		Source:     result.Source,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}
}
