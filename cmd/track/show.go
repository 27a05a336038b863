package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/zulandar/track/internal/git"
	"github.com/zulandar/track/internal/store"
	"github.com/zulandar/track/internal/tree"
)

func newShowCmd() *cobra.Command {
	var (
		all    bool
		closed bool
		info   int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List issues",
		Long: `Lists open issues, highest priority first. --all and --closed widen or
switch the selection; --info prints one issue with its commits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("info") {
				return runShowInfo(cmd, info)
			}
			filter := store.FilterOpen
			switch {
			case all:
				filter = store.FilterAll
			case closed:
				filter = store.FilterClosed
			}
			return runShow(cmd, filter)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "show open and closed issues")
	cmd.Flags().BoolVar(&closed, "closed", false, "show only closed issues")
	cmd.Flags().IntVar(&info, "info", 0, "show detailed info on this id")
	cmd.MarkFlagsMutuallyExclusive("all", "closed", "info")
	return cmd
}

func runShow(cmd *cobra.Command, filter store.Filter) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	issues := a.store.List(filter)
	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		fmt.Fprintln(out, "No issues.")
		return nil
	}
	printIssues(out, issues)
	return nil
}

func runShowInfo(cmd *cobra.Command, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid issue id %d: %w", id, store.ErrInvalidInput)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	issue, err := a.store.Get(id)
	if err != nil {
		return err
	}
	opened := lookupCommit(cmd, a.repo, issue.CommitHash)
	var closed *git.Commit
	if issue.ClosedCommitHash != "" {
		closed = lookupCommit(cmd, a.repo, issue.ClosedCommitHash)
	}
	printIssueInfo(cmd.OutOrStdout(), issue, opened, closed, useColor(cmd, a.cfg))
	return nil
}

// lookupCommit returns nil when hash is unknown to the repository, e.g.
// after a rebase or a shallow clone.
func lookupCommit(cmd *cobra.Command, repo *git.Repo, hash string) *git.Commit {
	if hash == "" {
		return nil
	}
	c, err := repo.Commit(cmd.Context(), hash)
	if err != nil {
		log.Printf("track: %v", err)
		return nil
	}
	return c
}

func newSearchCmd() *cobra.Command {
	var (
		tag   string
		where string
	)

	cmd := &cobra.Command{
		Use:   "search [string]",
		Short: "Search issue messages and tags",
		Long: `Finds issues whose message contains the string (case-insensitive) and that
carry --tag. --where filters further with an expression over the fields
id, priority, status, open, tags, parent, children, message, summary and
commit, for example:

  track search --where 'open && priority <= 1 && "ui" in tags'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			}
			return runSearch(cmd, text, tag, where)
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only issues with this tag")
	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	return cmd
}

func runSearch(cmd *cobra.Command, text, tag, where string) error {
	var filter *store.Where
	if where != "" {
		w, err := store.CompileWhere(where)
		if err != nil {
			return err
		}
		filter = w
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	issues := a.store.Search(text, tag)
	if filter != nil {
		if issues, err = filter.Apply(issues); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		fmt.Fprintln(out, "No matching issues.")
		return nil
	}
	printIssues(out, issues)
	return nil
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [id]",
		Short: "Draw the issue hierarchy",
		Long:  "Draws open top-level issues and their children, or only the subtree of the given id.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := 0
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				root = id
			}
			return runTree(cmd, root)
		},
	}
}

func runTree(cmd *cobra.Command, root int) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	return tree.Render(cmd.OutOrStdout(), a.store.Issues(), root, tree.Options{
		Width: a.cfg.Tree.Width,
		Color: useColor(cmd, a.cfg),
	})
}
