package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/service"
)

func (c *cli) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// emit writes v as JSON, or calls table for the human format.
func (c *cli) emit(w io.Writer, v interface{}, table func(io.Writer) error) error {
	if c.output == "json" {
		return c.printJSON(w, v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := table(tw); err != nil {
		return err
	}
	return tw.Flush()
}

func itemsTable(items []models.ArchiveItem, pinned []string) func(io.Writer) error {
	pinSet := make(map[string]struct{}, len(pinned))
	for _, id := range pinned {
		pinSet[id] = struct{}{}
	}
	return func(w io.Writer) error {
		if len(items) == 0 {
			_, err := fmt.Fprintln(w, "no archive items")
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tORGANIZATION\tDATE\tSTATUS\t")
		for _, item := range items {
			mark := ""
			if _, ok := pinSet[item.ID]; ok {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				item.ID, shorten(item.Title, 32), item.Category, shorten(item.Organization, 20), item.Date, item.Status, mark)
		}
		return nil
	}
}

func itemDetail(item models.ArchiveItem) func(io.Writer) error {
	return func(w io.Writer) error {
		image := item.ImageURL
		if strings.HasPrefix(image, "data:") {
			image = "(inline image)"
		}
		fmt.Fprintf(w, "ID:\t%s\n", item.ID)
		fmt.Fprintf(w, "Title:\t%s\n", item.Title)
		fmt.Fprintf(w, "Category:\t%s (%s)\n", item.Category, selector.DefaultTaxonomy.KindOf(item.Category))
		fmt.Fprintf(w, "Organization:\t%s\n", item.Organization)
		fmt.Fprintf(w, "Date:\t%s\n", item.Date)
		fmt.Fprintf(w, "Status:\t%s\n", item.Status)
		fmt.Fprintf(w, "Image:\t%s\n", image)
		if item.Description != "" {
			fmt.Fprintf(w, "Description:\t%s\n", item.Description)
		}
		return nil
	}
}

func notificationRows(w io.Writer, label string, notes []models.Notification) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\t\t\t\t\n", label)
	for _, n := range notes {
		unread := ""
		if !n.Read {
			unread = "●"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", unread, n.ID, n.Type, shorten(n.Title, 40), n.Time)
	}
}

func inboxTable(view service.InboxView) func(io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "%d unread\t\t\t\t\n", view.UnreadCount)
		if len(view.Items) == 0 {
			_, err := fmt.Fprintln(w, "no notifications")
			return err
		}
		notificationRows(w, "Today", view.Groups.Today)
		notificationRows(w, "Yesterday", view.Groups.Yesterday)
		notificationRows(w, "Earlier", view.Groups.Older)
		return nil
	}
}

func profileTable(user models.UserProfile) func(io.Writer) error {
	return func(w io.Writer) error {
		avatar := user.Avatar
		if strings.HasPrefix(avatar, "data:") {
			avatar = "(inline image)"
		}
		fmt.Fprintf(w, "ID:\t%s\n", user.ID)
		fmt.Fprintf(w, "Name:\t%s\n", user.Name)
		fmt.Fprintf(w, "Student ID:\t%s\n", user.StudentID)
		fmt.Fprintf(w, "Grade:\t%s\n", user.Grade)
		fmt.Fprintf(w, "Major:\t%s\n", user.Major)
		fmt.Fprintf(w, "University:\t%s\n", user.University)
		fmt.Fprintf(w, "Avatar:\t%s\n", avatar)
		return nil
	}
}

func shorten(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
