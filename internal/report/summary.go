package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// CategoryCount is a number of commits with the category
type CategoryCount struct {
	Category model.Category
	Count    int
}

// RepositorySummary holds counts of one repository
type RepositorySummary struct {
	Repository model.Repository
	Total      int
	BugFixes   int
	Top        model.Category
}

// Summary holds category statistics of a run
type Summary struct {
	Repositories []RepositorySummary
	Categories   []CategoryCount
	Total        int
	BugFixes     int
}

// BuildSummary counts categories overall and per repository, categories are listed in taxonomy order
func BuildSummary(results []RepositoryResult) Summary {
	taxonomy := model.Taxonomy()
	overall := make(map[model.Category]int, len(taxonomy))

	var out Summary
	for _, r := range results {
		perRepo := make(map[model.Category]int, len(taxonomy))
		for _, c := range r.Commits {
			overall[c.Category]++
			perRepo[c.Category]++
		}

		rs := RepositorySummary{Repository: r.Repository, Total: len(r.Commits), Top: model.CategoryNonBugFix}
		topCount := 0
		for _, category := range taxonomy {
			if !category.IsBugFix() {
				continue
			}
			rs.BugFixes += perRepo[category]
			if perRepo[category] > topCount {
				rs.Top, topCount = category, perRepo[category]
			}
		}

		out.Repositories = append(out.Repositories, rs)
		out.Total += rs.Total
		out.BugFixes += rs.BugFixes
	}

	for _, category := range taxonomy {
		out.Categories = append(out.Categories, CategoryCount{Category: category, Count: overall[category]})
	}

	return out
}

// BugFixRatio returns share of bug fixing commits in [0, 1]
func (s Summary) BugFixRatio() float64 {
	return ratio(s.BugFixes, s.Total)
}

// Markdown renders the summary as a markdown document
func (s Summary) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Commit categories\n\n")
	fmt.Fprintf(&sb, "- Repositories: %d\n", len(s.Repositories))
	fmt.Fprintf(&sb, "- Commits: %s\n", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(&sb, "- Bug fixes: %s (%s)\n\n", humanize.Comma(int64(s.BugFixes)), percent(s.BugFixes, s.Total))

	sb.WriteString("## Categories\n\n")
	sb.WriteString("| Category | Group | Commits | Share |\n")
	sb.WriteString("|---|---|---:|---:|\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", c.Category, c.Category.Group(), c.Count, percent(c.Count, s.Total))
	}

	if len(s.Repositories) > 0 {
		sb.WriteString("\n## Repositories\n\n")
		sb.WriteString("| Repository | Stars | Commits | Bug fixes | Share | Top category |\n")
		sb.WriteString("|---|---:|---:|---:|---:|---|\n")
		for _, r := range s.Repositories {
			fmt.Fprintf(&sb, "| %s | %s | %d | %d | %s | %s |\n",
				escapeCell(r.Repository.ID),
				humanize.Comma(int64(r.Repository.Stars)),
				r.Total,
				r.BugFixes,
				percent(r.BugFixes, r.Total),
				r.Top,
			)
		}
	}

	return sb.String()
}

const maxTitleLength = 80

// writeCommitsMarkdown lists commits of every repository with time relative to now
func writeCommitsMarkdown(out io.Writer, results []RepositoryResult, now time.Time) error {
	var sb strings.Builder

	sb.WriteString("# Commits\n\n")
	fmt.Fprintf(&sb, "> Generated: %s\n\n", now.UTC().Format(time.DateTime))

	for _, r := range results {
		repo := r.Repository
		fmt.Fprintf(&sb, "## %s\n", escapeCell(repo.ID))
		if repo.URL != "" {
			fmt.Fprintf(&sb, "- **URL**: %s\n", repo.URL)
		}
		fmt.Fprintf(&sb, "- **Stars**: %s\n", humanize.Comma(int64(repo.Stars)))
		fmt.Fprintf(&sb, "- **Commits**: %d\n\n", len(r.Commits))

		if len(r.Commits) > 0 {
			sb.WriteString("| Time | Author | Title | Category | Link |\n")
			sb.WriteString("|---|---|---|---|---|\n")
			for _, c := range r.Commits {
				fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
					relativeTime(c.Timestamp, now),
					escapeCell(c.Author),
					escapeCell(truncateTitle(c.Subject())),
					c.Category,
					commitLink(c.Commit),
				)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxTitleLength-3]) + "..."
}

func commitLink(c model.Commit) string {
	short := c.SHA
	if len(short) > 7 {
		short = short[:7]
	}
	if c.URL == "" {
		return short
	}
	return fmt.Sprintf("[%s](%s)", short, c.URL)
}

func renderHTML(out io.Writer, markdown string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Commit categories</title></head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func percent(part, total int) string {
	return fmt.Sprintf("%.1f%%", ratio(part, total)*100)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
