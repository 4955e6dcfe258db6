package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"pagespeed-campaign/internal/catalog"
)

func (a *app) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the Azion product catalog",
	}

	var asJSON bool
	solutions := &cobra.Command{
		Use:   "solutions",
		Short: "List Azion products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cat.Solutions())
			}
			t := newTable("ID", "NAME", "URL")
			for _, s := range cat.Solutions() {
				t.add(s.ID, s.Name, s.URL)
			}
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
	audits := &cobra.Command{
		Use:   "audits",
		Short: "List Lighthouse audits mapped to Azion products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cat.Mappings())
			}
			t := newTable("AUDIT", "PRIORITY", "SOLUTIONS")
			for _, m := range cat.Mappings() {
				t.add(m.AuditID, string(m.Priority), strings.Join(m.SolutionIDs, ","))
			}
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.AddCommand(solutions, audits)
	return cmd
}

func (a *app) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <audit-id>",
		Short: "Show the Azion products recommended for a Lighthouse audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			rec, err := cat.Resolve(args[0], nil)
			if errors.Is(err, catalog.ErrNotMapped) {
				return fmt.Errorf("%w; run \"analyzer catalog audits\" for the mapped ids", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			fmt.Fprintf(out, "%s [%s]\n", st.title.Render(rec.AuditID), st.priority(rec.Priority).Render(string(rec.Priority)))
			fmt.Fprintln(out, rec.Description)
			for _, s := range rec.Solutions {
				fmt.Fprintf(out, "\n%s %s\n", st.label.Render(s.Name), st.muted.Render(s.URL))
				fmt.Fprintf(out, "  %s\n", s.Description)
				for _, b := range s.Benefits {
					fmt.Fprintf(out, "  - %s\n", b)
				}
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table renders aligned columns; widths are measured with lipgloss so
// styled cells line up.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	st := newStyles(w)
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				parts[i] = style.Render(cell)
				continue
			}
			parts[i] = style.Render(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}
	line(t.headers, st.label)
	for _, row := range t.rows {
		line(row, st.plain)
	}
}
