package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/zulandar/track/internal/git"
	"github.com/zulandar/track/internal/models"
)

const (
	summaryWidth = 50
	hashWidth    = 8
	ruleWidth    = 70
)

// printIssues writes issues as a table, in the order given.
func printIssues(out io.Writer, issues []*models.Issue) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCOMMIT\tSTATUS\tPRIO\tTAGS\tSUMMARY")
	for _, i := range issues {
		fmt.Fprintf(w, "%03d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i.ID,
			i.CreatedAt.Format("Jan 02"),
			shortHash(i.CommitHash),
			i.Status,
			i.Priority,
			strings.Join(i.Tags, ","),
			truncate(i.Summary(), summaryWidth),
		)
	}
	w.Flush()
}

// statusText colors an issue status green when open and red otherwise.
func statusText(i *models.Issue, colored bool) string {
	c := color.New(color.FgRed)
	if i.IsOpen {
		c = color.New(color.FgGreen)
	}
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(i.Status)
}

// printIssueInfo writes the detailed view of one issue with the commits it
// was opened and closed at. Commits that cannot be resolved are reported in
// place of their details.
func printIssueInfo(out io.Writer, i *models.Issue, opened, closed *git.Commit, colored bool) {
	rule := strings.Repeat("-", ruleWidth)
	fmt.Fprintf(out, "Issue %03d\n", i.ID)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Status:   %s\n", statusText(i, colored))
	fmt.Fprintf(out, "Date:     %s\n", i.CreatedAt.Format("Mon Jan 02 15:04 2006"))
	fmt.Fprintf(out, "Priority: %d\n", i.Priority)
	if len(i.Tags) > 0 {
		fmt.Fprintf(out, "Tags:     %s\n", strings.Join(i.Tags, ", "))
	}
	if i.Parent != 0 {
		fmt.Fprintf(out, "Parent:   %03d\n", i.Parent)
	}
	if len(i.Children) > 0 {
		ids := make([]string, len(i.Children))
		for n, c := range i.Children {
			ids[n] = fmt.Sprintf("%03d", c)
		}
		fmt.Fprintf(out, "Children: %s\n", strings.Join(ids, ", "))
	}
	fmt.Fprintf(out, "\n%s\n", i.Message)

	if i.ClosedCommitHash != "" {
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, "Closed with:")
		printCommit(out, i.ClosedCommitHash, closed)
	}
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Opened:")
	printCommit(out, i.CommitHash, opened)
}

func printCommit(out io.Writer, hash string, c *git.Commit) {
	if c == nil {
		fmt.Fprintf(out, "commit  %s (not found in repository)\n", hash)
		return
	}
	fmt.Fprintf(out, "commit  %s\n", c.Hash)
	fmt.Fprintf(out, "Author: %s\n", c.Author)
	fmt.Fprintf(out, "Date:   %s\n\n", c.Date.UTC().Format(time.ANSIC))
	fmt.Fprintf(out, "%s\n", c.Message)
}

func shortHash(h string) string {
	if len(h) <= hashWidth {
		return h
	}
	return h[:hashWidth]
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
