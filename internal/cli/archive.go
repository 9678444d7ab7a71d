package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

func (c *cli) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "archive",
		Aliases: []string{"items"},
		Short:   "Browse and edit growth archive items",
	}
	cmd.AddCommand(
		c.archiveListCommand(),
		c.archiveShowCommand(),
		c.archiveAddCommand(),
		c.archiveEditCommand(),
		c.archiveRemoveCommand(),
	)
	return cmd
}

func parseTabFlag(raw string) (selector.Tab, error) {
	tab, ok := selector.ParseTab(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown tab "+raw)
	}
	return tab, nil
}

func (c *cli) archiveListCommand() *cobra.Command {
	var tabFlag, query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archive items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			tab, err := parseTabFlag(tabFlag)
			if err != nil {
				return err
			}
			items := c.rt.Archives.List(tab, query)
			pinned := c.rt.Session.Snapshot().PinnedIDs
			return c.emit(cmd.OutOrStdout(), items, itemsTable(items, pinned))
		},
	}
	cmd.Flags().StringVar(&tabFlag, "tab", "all", "all, academic, practice, reward or certificate")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title, organization and description")
	return cmd
}

func (c *cli) archiveShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one archive item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			item, err := c.rt.Archives.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), item, itemDetail(item))
		},
	}
}

func (c *cli) archiveAddCommand() *cobra.Command {
	var (
		draft     models.ArchiveDraft
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a new archive item for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if imagePath != "" {
				dataURL, err := c.rt.ArchiveImages.EncodeFile(imagePath)
				if err != nil {
					return err
				}
				draft.ImageURL = dataURL
			}
			item, err := c.rt.Archives.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), item, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "submitted %s (%s)\n", item.ID, item.Status)
				return err
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&draft.Title, "title", "", "title")
	flags.StringVar(&draft.Category, "category", "", "category label, e.g. 学业, 实践, 奖惩, 证书")
	flags.StringVar(&draft.Organization, "org", "", "issuing organization")
	flags.StringVar(&draft.Date, "date", "", "date as YYYY-MM-DD (defaults to today)")
	flags.StringVar(&draft.ImageURL, "image-url", "", "image URL")
	flags.StringVar(&imagePath, "image", "", "local image file to embed")
	flags.StringVar(&draft.Description, "description", "", "description")
	cmd.MarkFlagsMutuallyExclusive("image", "image-url")
	return cmd
}

func (c *cli) archiveEditCommand() *cobra.Command {
	var (
		title, category, org, date, status, imageURL, imagePath, description string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an archive item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			flags := cmd.Flags()
			var patch models.ArchivePatch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("org") {
				patch.Organization = &org
			}
			if flags.Changed("date") {
				patch.Date = &date
			}
			if flags.Changed("status") {
				s := models.ArchiveStatus(status)
				patch.Status = &s
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("image-url") {
				patch.ImageURL = &imageURL
			}
			if imagePath != "" {
				dataURL, err := c.rt.ArchiveImages.EncodeFile(imagePath)
				if err != nil {
					return err
				}
				patch.ImageURL = &dataURL
			}
			item, err := c.rt.Archives.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), item, itemDetail(item))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "title")
	flags.StringVar(&category, "category", "", "category label")
	flags.StringVar(&org, "org", "", "issuing organization")
	flags.StringVar(&date, "date", "", "date as YYYY-MM-DD")
	flags.StringVar(&status, "status", "", "pending, approved or rejected")
	flags.StringVar(&imageURL, "image-url", "", "image URL")
	flags.StringVar(&imagePath, "image", "", "local image file to embed")
	flags.StringVar(&description, "description", "", "description")
	cmd.MarkFlagsMutuallyExclusive("image", "image-url")
	return cmd
}

func (c *cli) archiveRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an archive item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if err := c.rt.Archives.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}
