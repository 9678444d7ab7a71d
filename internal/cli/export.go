package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/growth-archive/internal/service"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

func (c *cli) exportCommand() *cobra.Command {
	var formatFlag, tabFlag, query, title, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write archive items to a CSV, PDF or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			format, ok := service.ParseExportFormat(formatFlag)
			if !ok {
				return appErrors.Clone(appErrors.ErrValidation, "unsupported format "+formatFlag)
			}
			tab, err := parseTabFlag(tabFlag)
			if err != nil {
				return err
			}
			rendered, err := c.rt.Exports.Render(cmd.Context(), c.rt.Archives.Items(), service.ExportRequest{
				Format: format,
				Tab:    tab,
				Query:  query,
				Title:  title,
			})
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("archive_%s.%s", time.Now().Format("20060102"), rendered.Format)
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(rendered.Payload)
				return err
			}
			if err := os.WriteFile(out, rendered.Payload, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			result := map[string]interface{}{"path": out, "format": rendered.Format, "rows": rendered.Rows}
			return c.emit(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "wrote %d items to %s\n", rendered.Rows, out)
				return err
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "csv", "csv, pdf or xlsx")
	flags.StringVar(&tabFlag, "tab", "all", "all, academic, practice, reward or certificate")
	flags.StringVarP(&query, "query", "q", "", "search title, organization and description")
	flags.StringVar(&title, "title", "", "document title for PDF and XLSX")
	flags.StringVar(&out, "out", "", "output path, or - for stdout")
	return cmd
}
