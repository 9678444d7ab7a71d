package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/service"
)

func (c *cli) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the pinned dashboard and archive summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			view := c.rt.Archives.Dashboard()
			return c.emit(cmd.OutOrStdout(), view, dashboardTable(view))
		},
	}
}

func dashboardTable(view service.DashboardView) func(io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "%s\t%s\n", view.User.Name, view.User.University)
		fmt.Fprintf(w, "Archive:\t%d items", view.Summary.Total)
		for _, kind := range selector.Kinds {
			fmt.Fprintf(w, ", %s %d", kind, view.Summary.ByKind[kind])
		}
		fmt.Fprintln(w)
		if view.HasUnread {
			fmt.Fprintf(w, "Inbox:\t%d unread\n", view.UnreadCount)
		}
		fmt.Fprintln(w)
		return itemsTable(view.Items, view.PinnedIDs)(w)
	}
}

func (c *cli) pinsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "Choose which items the dashboard shows",
		Long: `Choose which items the dashboard shows.

Pins live only in the session held by one process and are never sent to the
server. Each archive invocation starts with no pins, so a selection made with
"pins set" or "pins toggle" is gone once the command exits and a later
"archive dashboard" falls back to the latest items. Run archive-gateway and use
PUT /api/v1/dashboard/pins to keep a selection for the life of the gateway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			pinned := c.rt.Session.Snapshot().PinnedIDs
			return c.emit(cmd.OutOrStdout(), pinned, pinsTable(pinned))
		},
	}
	cmd.AddCommand(c.pinsSetCommand(), c.pinsToggleCommand(), c.pinsCandidatesCommand())
	return cmd
}

func pinsTable(pinned []string) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(pinned) == 0 {
			_, err := fmt.Fprintln(w, "nothing pinned; the dashboard shows the latest items")
			return err
		}
		for _, id := range pinned {
			fmt.Fprintln(w, id)
		}
		return nil
	}
}

func (c *cli) pinsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [id...]",
		Short: "Replace the pinned selection for this run; no ids clears it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			pinned := c.rt.Archives.SetPins(args)
			return c.emit(cmd.OutOrStdout(), pinned, pinsTable(pinned))
		},
	}
}

func (c *cli) pinsToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pin or unpin one item for this run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			current := c.rt.Session.Snapshot().PinnedIDs
			pinned := c.rt.Archives.SetPins(selector.TogglePin(current, args[0]))
			return c.emit(cmd.OutOrStdout(), pinned, pinsTable(pinned))
		},
	}
}

func (c *cli) pinsCandidatesCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Search items that can be pinned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			items := c.rt.Archives.PinCandidates(query)
			pinned := c.rt.Session.Snapshot().PinnedIDs
			return c.emit(cmd.OutOrStdout(), items, itemsTable(items, pinned))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "match against title or category")
	return cmd
}
