package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/selector"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

func (c *cli) inboxCommand() *cobra.Command {
	var tabFlag string
	cmd := &cobra.Command{
		Use:     "inbox",
		Aliases: []string{"notifications"},
		Short:   "List notifications grouped by day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			tab, ok := selector.ParseInboxTab(tabFlag)
			if !ok {
				return appErrors.Clone(appErrors.ErrValidation, "unknown inbox tab "+tabFlag)
			}
			view := c.rt.Inbox.List(tab)
			return c.emit(cmd.OutOrStdout(), view, inboxTable(view))
		},
	}
	cmd.Flags().StringVar(&tabFlag, "tab", "all", "all, academic, system or alert")
	cmd.AddCommand(c.inboxReadCommand(), c.inboxReadAllCommand())
	return cmd
}

func (c *cli) inboxReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if _, ok := c.rt.Inbox.Get(args[0]); !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
			}
			if err := c.rt.Inbox.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "marked %s as read\n", args[0])
			return err
		},
	}
}

func (c *cli) inboxReadAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if err := c.rt.Inbox.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "all notifications read")
			return err
		},
	}
}
