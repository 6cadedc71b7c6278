package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Header is the fixed column order of per-repository and merged files
var Header = []string{"repository", "commit_hash", "author", "timestamp", "message", "category"}

var repositoriesHeader = []string{"rank", "repository", "url", "stars", "language", "default_branch", "commits"}

var detailsHeader = []string{"repository", "commit_hash", "has_bug_fix", "bug_category", "bug_type", "confidence", "reasoning", "source"}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// RepositoryResult holds classified commits of one repository
type RepositoryResult struct {
	Repository model.Repository
	Commits    []model.ClassifiedCommit
	File       string
}

// Writer persists classified commits as CSV files in the output directory.
// A per-repository file is written as soon as the repository is done, the merged file
// and the extras are written by Flush from every repository written so far.
type Writer struct {
	cfg Config
	log logze.Logger

	written []RepositoryResult
	failed  []RepositoryResult
	names   map[string]struct{}
}

// NewWriter creates the output directory if it is absent
func NewWriter(cfg Config) (*Writer, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errm.Wrap(err, "failed to create output directory")
	}

	// Per-repository files must not overwrite files written by Flush
	names := make(map[string]struct{})
	for _, name := range cfg.fileNames() {
		names[name] = struct{}{}
	}

	return &Writer{
		cfg:   cfg,
		log:   logze.With("component", "writer", "dir", cfg.Dir),
		names: names,
	}, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.cfg.Dir
}

// WriteRepository writes the per-repository file and remembers its rows for the merged file.
// On failure the rows are kept in memory and are available with Failed.
func (w *Writer) WriteRepository(repo model.Repository, commits []model.ClassifiedCommit) (string, error) {
	result := RepositoryResult{
		Repository: repo,
		Commits:    commits,
		File:       w.uniqueFileName(repo.ID),
	}
	path := filepath.Join(w.cfg.Dir, result.File)

	err := writeFileAtomic(path, func(out io.Writer) error {
		return writeCommits(out, commits)
	})
	if err != nil {
		w.failed = append(w.failed, result)
		return "", errm.Wrap(err, "failed to write repository file")
	}

	w.written = append(w.written, result)
	w.log.Debug("repository file written", "repository", repo.ID, "file", path, "rows", len(commits))

	return path, nil
}

// Flush writes the merged file, the repository list, the details file and the summaries
// for every written repository.
// It can be called more than once, files are overwritten.
func (w *Writer) Flush() error {
	var rows []model.ClassifiedCommit
	for _, r := range w.written {
		rows = append(rows, r.Commits...)
	}

	mergedPath := filepath.Join(w.cfg.Dir, w.cfg.MergedFile)
	err := writeFileAtomic(mergedPath, func(out io.Writer) error {
		return writeCommits(out, rows)
	})
	if err != nil {
		return errm.Wrap(err, "failed to write merged file")
	}

	err = writeFileAtomic(filepath.Join(w.cfg.Dir, w.cfg.RepositoriesFile), func(out io.Writer) error {
		return writeRepositories(out, w.written)
	})
	if err != nil {
		return errm.Wrap(err, "failed to write repositories file")
	}

	err = writeFileAtomic(filepath.Join(w.cfg.Dir, w.cfg.DetailsFile), func(out io.Writer) error {
		return writeDetails(out, rows)
	})
	if err != nil {
		return errm.Wrap(err, "failed to write details file")
	}

	if !w.cfg.DisableSummary {
		if err := w.writeSummary(); err != nil {
			return err
		}
	}

	w.log.Info("results flushed", "file", mergedPath, "repositories", len(w.written), "rows", len(rows))

	return nil
}

// Results returns every successfully written repository in write order
func (w *Writer) Results() []RepositoryResult {
	return append([]RepositoryResult(nil), w.written...)
}

// Failed returns repositories whose file could not be written
func (w *Writer) Failed() []RepositoryResult {
	return append([]RepositoryResult(nil), w.failed...)
}

func (w *Writer) writeSummary() error {
	summary := BuildSummary(w.written)

	markdown := summary.Markdown()
	err := writeFileAtomic(filepath.Join(w.cfg.Dir, w.cfg.SummaryFile), func(out io.Writer) error {
		_, err := io.WriteString(out, markdown)
		return err
	})
	if err != nil {
		return errm.Wrap(err, "failed to write summary")
	}

	err = writeFileAtomic(filepath.Join(w.cfg.Dir, w.cfg.HTMLSummaryFile), func(out io.Writer) error {
		return renderHTML(out, markdown)
	})
	if err != nil {
		return errm.Wrap(err, "failed to write HTML summary")
	}

	err = writeFileAtomic(filepath.Join(w.cfg.Dir, w.cfg.CommitsMarkdownFile), func(out io.Writer) error {
		return writeCommitsMarkdown(out, w.written, time.Now())
	})
	if err != nil {
		return errm.Wrap(err, "failed to write commits markdown")
	}

	return nil
}

func (w *Writer) uniqueFileName(repositoryID string) string {
	base := strings.TrimSuffix(FileNameFor(repositoryID), PerRepositorySuffix)
	name := base + PerRepositorySuffix
	for i := 2; ; i++ {
		if _, ok := w.names[name]; !ok {
			break
		}
		name = base + "_" + strconv.Itoa(i) + PerRepositorySuffix
	}
	w.names[name] = struct{}{}
	return name
}

// FileNameFor returns the per-repository file name: "owner/name" becomes "owner_name_commits.csv"
func FileNameFor(repositoryID string) string {
	name := unsafeFileChars.ReplaceAllString(strings.ReplaceAll(repositoryID, "/", "_"), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "repository"
	}
	return name + PerRepositorySuffix
}

// Row converts a classified commit to a CSV record in Header order
func Row(c model.ClassifiedCommit) []string {
	return []string{
		c.RepositoryID,
		c.SHA,
		c.Author,
		formatTimestamp(c.Timestamp),
		strings.TrimSpace(newlineReplacer.Replace(c.Message)),
		string(c.Category),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeCommits(out io.Writer, commits []model.ClassifiedCommit) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range commits {
		if err := cw.Write(Row(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DetailsRow converts a classified commit to a record in details file order
func DetailsRow(c model.ClassifiedCommit) []string {
	return []string{
		c.RepositoryID,
		c.SHA,
		strconv.FormatBool(c.Category.IsBugFix()),
		string(c.Category.Group()),
		string(c.Category),
		strconv.FormatFloat(c.Confidence, 'f', 2, 64),
		strings.TrimSpace(newlineReplacer.Replace(c.Reasoning)),
		string(c.Source),
	}
}

func writeDetails(out io.Writer, commits []model.ClassifiedCommit) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(detailsHeader); err != nil {
		return err
	}
	for _, c := range commits {
		if err := cw.Write(DetailsRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeRepositories(out io.Writer, results []RepositoryResult) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(repositoriesHeader); err != nil {
		return err
	}
	for i, r := range results {
		repo := r.Repository
		err := cw.Write([]string{
			strconv.Itoa(i + 1),
			repo.ID,
			repo.URL,
			strconv.Itoa(repo.Stars),
			repo.Language,
			repo.DefaultBranch,
			strconv.Itoa(len(r.Commits)),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFileAtomic writes into a temporary file in the same directory and renames it over path,
// so a failed write never leaves a truncated file behind
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errm.Wrap(err, "failed to create temporary file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return errm.Wrap(err, "failed to write "+filepath.Base(path))
	}
	if err = tmp.Close(); err != nil {
		return errm.Wrap(err, "failed to close temporary file")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errm.Wrap(err, "failed to set file mode")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errm.Wrap(err, "failed to rename temporary file")
	}

	return nil
}
