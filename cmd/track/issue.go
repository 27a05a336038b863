package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/track/internal/store"
)

func newAddCmd() *cobra.Command {
	var (
		priority int
		tags     []string
		message  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an issue at the current HEAD",
		Long: `Adds an open issue tagged with the HEAD commit. The message comes from -m,
from stdin when it is not a terminal, or from $EDITOR. An empty message aborts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, priority, tags, message)
		},
	}

	cmd.Flags().IntVarP(&priority, "prio", "p", 3, "priority 0-5 (default from config)")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to attach (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "issue message")
	return cmd
}

func runAdd(cmd *cobra.Command, priority int, tags []string, message string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !cmd.Flags().Changed("prio") {
		priority = a.cfg.DefaultPriority
	}
	msg, err := a.composeMessage(cmd, message, cmd.Flags().Changed("message"), "")
	if err != nil {
		return err
	}

	issue, err := a.store.Add(cmd.Context(), priority, tags, msg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added issue %03d\n", issue.ID)
	return nil
}

func newCloseCmd() *cobra.Command {
	var wontfix bool

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close an issue at the current HEAD",
		Long:  "Closes an issue and records the HEAD commit. All of its children must be closed first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClose(cmd, args[0], wontfix)
		},
	}

	cmd.Flags().BoolVar(&wontfix, "wontfix", false, "close as wontfix instead of fixed")
	return cmd
}

func runClose(cmd *cobra.Command, arg string, wontfix bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Close(cmd.Context(), id, wontfix); err != nil {
		return err
	}
	issue, err := a.store.Get(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Issue %03d %s at %s\n", id, issue.Status, shortHash(issue.ClosedCommitHash))
	return nil
}

func newReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Reopen a closed issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssue(cmd, args[0], "Reopened issue %03d\n", func(s *store.Store, id int) error {
				return s.Reopen(id)
			})
		},
	}
}

func newRebaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebase <id>",
		Short: "Move an issue's opening commit to the current HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssue(cmd, args[0], "Rebased issue %03d\n", func(s *store.Store, id int) error {
				return s.Rebase(cmd.Context(), id)
			})
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an issue",
		Long:    "Deletes an issue. Its children move up to its parent. Ids are never reused.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssue(cmd, args[0], "Removed issue %03d\n", func(s *store.Store, id int) error {
				return s.Remove(id)
			})
		},
	}
}

// withIssue opens the store, runs fn on the parsed id and reports success.
func withIssue(cmd *cobra.Command, arg, done string, fn func(*store.Store, int) error) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(a.store, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), done, id)
	return nil
}

func newEditCmd() *cobra.Command {
	var (
		priority int
		addTag   string
		rmTag    string
		attach   int
		detach   bool
		message  bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change one field of an issue",
		Long: `Changes exactly one field of an issue: its priority, a tag, its parent or
its message. --message reads the new text from stdin when it is not a
terminal, otherwise it opens $EDITOR on the current text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edits []store.Edit
			if cmd.Flags().Changed("prio") {
				edits = append(edits, store.Edit{Kind: store.EditPriority, Priority: priority})
			}
			if cmd.Flags().Changed("add-tag") {
				edits = append(edits, store.Edit{Kind: store.EditAddTag, Tag: addTag})
			}
			if cmd.Flags().Changed("rm-tag") {
				edits = append(edits, store.Edit{Kind: store.EditRemoveTag, Tag: rmTag})
			}
			if cmd.Flags().Changed("attach") {
				edits = append(edits, store.Edit{Kind: store.EditAttach, Parent: attach})
			}
			if detach {
				edits = append(edits, store.Edit{Kind: store.EditDetach})
			}
			if message {
				edits = append(edits, store.Edit{Kind: store.EditMessage})
			}
			if len(edits) != 1 {
				return fmt.Errorf("edit: exactly one of --prio, --add-tag, --rm-tag, --attach, --detach, --message is required: %w",
					store.ErrInvalidInput)
			}
			return runEdit(cmd, args[0], edits[0])
		},
	}

	cmd.Flags().IntVar(&priority, "prio", 0, "set priority (0-5)")
	cmd.Flags().StringVar(&addTag, "add-tag", "", "add a tag")
	cmd.Flags().StringVar(&rmTag, "rm-tag", "", "remove a tag")
	cmd.Flags().IntVar(&attach, "attach", 0, "make the issue a child of this id")
	cmd.Flags().BoolVar(&detach, "detach", false, "remove the issue from its parent")
	cmd.Flags().BoolVar(&message, "message", false, "rewrite the message")
	return cmd
}

func runEdit(cmd *cobra.Command, arg string, e store.Edit) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if e.Kind == store.EditMessage {
		current, err := a.store.Get(id)
		if err != nil {
			return err
		}
		if e.Message, err = a.composeMessage(cmd, "", false, current.Message); err != nil {
			return err
		}
	}

	if err := a.store.Edit(id, e); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of issue %03d\n", e.Kind, id)
	return nil
}
