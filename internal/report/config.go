package report

import (
	"path/filepath"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultDir              = "results"
	defaultMergedFile       = "all_commits.csv"
	defaultRepositoriesFile = "repositories.csv"
	defaultSummaryFile      = "summary.md"
	defaultHTMLSummaryFile  = "summary.html"
	defaultDetailsFile      = "commit_details.csv"
	defaultCommitsMarkdown  = "all_commits.md"

	// PerRepositorySuffix ends the name of every per-repository file
	PerRepositorySuffix = "_commits.csv"
)

// Config represents output configuration
type Config struct {
	Dir              string `yaml:"dir" env:"OUTPUT_DIR"`
	MergedFile       string `yaml:"merged_file" env:"OUTPUT_MERGED_FILE"`
	RepositoriesFile string `yaml:"repositories_file" env:"OUTPUT_REPOSITORIES_FILE"`
	SummaryFile      string `yaml:"summary_file" env:"OUTPUT_SUMMARY_FILE"`
	HTMLSummaryFile  string `yaml:"html_summary_file" env:"OUTPUT_HTML_SUMMARY_FILE"`
	DisableSummary   bool   `yaml:"disable_summary" env:"OUTPUT_DISABLE_SUMMARY"`

	// DetailsFile keeps source, confidence and reasoning of every classification
	DetailsFile string `yaml:"details_file" env:"OUTPUT_DETAILS_FILE"`
	// CommitsMarkdownFile lists commits of every repository as markdown tables
	CommitsMarkdownFile string `yaml:"commits_markdown_file" env:"OUTPUT_COMMITS_MARKDOWN_FILE"`
}

func (c *Config) PrepareAndValidate() error {
	c.Dir = lang.Check(c.Dir, defaultDir)
	c.MergedFile = lang.Check(c.MergedFile, defaultMergedFile)
	c.RepositoriesFile = lang.Check(c.RepositoriesFile, defaultRepositoriesFile)
	c.SummaryFile = lang.Check(c.SummaryFile, defaultSummaryFile)
	c.HTMLSummaryFile = lang.Check(c.HTMLSummaryFile, defaultHTMLSummaryFile)
	c.DetailsFile = lang.Check(c.DetailsFile, defaultDetailsFile)
	c.CommitsMarkdownFile = lang.Check(c.CommitsMarkdownFile, defaultCommitsMarkdown)

	seen := make(map[string]struct{}, 6)
	for _, name := range c.fileNames() {
		if name != filepath.Base(name) {
			return errm.Errorf("output file name must not contain a directory: %s", name)
		}
		if _, ok := seen[name]; ok {
			return errm.Errorf("output file name %s is used twice", name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

// fileNames returns names of the files written by Flush
func (c Config) fileNames() []string {
	return []string{c.MergedFile, c.RepositoriesFile, c.SummaryFile, c.HTMLSummaryFile, c.DetailsFile, c.CommitsMarkdownFile}
}
