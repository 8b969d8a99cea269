// ABOUTME: Shared output and input helpers for CLI commands
// ABOUTME: Table and JSON rendering, list search/sort flags, and JSON/YAML payload files

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/listing"
	"github.com/markalston/formationsgest/internal/tui/styles"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// formatTable renders t for a terminal
func formatTable(t export.Table) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// printRecord writes v as JSON or as a two-column key/value table
func printRecord(w io.Writer, v any, t export.Table) error {
	if IsJSONOutput() {
		return printJSON(w, v)
	}
	if len(t.Rows) == 0 {
		return nil
	}
	kv := export.Table{Headers: []string{"Champ", "Valeur"}}
	for i, h := range t.Headers {
		kv.Rows = append(kv.Rows, []string{h, t.Rows[0][i]})
	}
	fmt.Fprintln(w, formatTable(kv))
	return nil
}

// listFlags are the search/sort/filter flags shared by list commands
type listFlags struct {
	search  string
	sort    string
	desc    bool
	page    int
	limit   int
	filters map[string]string
}

func addListFlags(cmd *cobra.Command, f *listFlags) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case and accent insensitive search across displayed columns")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort by column header (e.g. Titre, Statut)")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort in descending order")
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number sent to the API")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Page size sent to the API")
	cmd.Flags().StringToStringVar(&f.filters, "filter", nil, "Server-side filter key=value (repeatable)")
}

// options returns the query sent with the list request
func (f *listFlags) options() *client.ListOptions {
	return &client.ListOptions{Page: f.page, Limit: f.limit, Filters: f.filters}
}

// columnIndex finds header in headers, ignoring case and accents
func columnIndex(headers []string, header string) (int, error) {
	want := listing.Fold(header)
	for i, h := range headers {
		if listing.Fold(h) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q (available: %s)", header, strings.Join(headers, ", "))
}

// selectItems applies the search and sort flags. build maps items to the
// displayed table, whose cells are what search and sort look at.
func selectItems[T any](items []T, f *listFlags, build func([]T) export.Table) ([]T, error) {
	row := func(it T) []string { return build([]T{it}).Rows[0] }

	out := listing.Filter(items, f.search, row)
	if f.sort != "" {
		idx, err := columnIndex(build(nil).Headers, f.sort)
		if err != nil {
			return nil, err
		}
		out = listing.SortBy(out, listing.ByText(func(it T) string { return row(it)[idx] }), f.desc)
	}
	return out, nil
}

// printList filters, sorts and prints a list response
func printList[T any](w io.Writer, res *client.List[T], f *listFlags, build func([]T) export.Table) error {
	items, err := selectItems(res.Items, f, build)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(w, map[string]any{
			"items": items,
			"total": res.Total,
			"shown": len(items),
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	fmt.Fprintln(w, formatTable(build(items)))
	fmt.Fprintf(w, "%d / %d\n", len(items), res.Total)
	return nil
}

// readPayload decodes a JSON or YAML file (or stdin for "-") into v. YAML is
// converted through JSON so the models' json tags apply.
func readPayload(path string, v any) error {
	if path == "" {
		return fmt.Errorf("--file is required")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		} else if ext == ".json" {
			return fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", path, err)
	}
	if err := json.Unmarshal(converted, v); err != nil {
		return fmt.Errorf("invalid payload in %s: %w", path, err)
	}
	return nil
}

// openUpload opens a file attached to a multipart request. The caller closes it.
func openUpload(field, path string) (*client.Upload, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &client.Upload{Field: field, FileName: filepath.Base(path), Content: f}, f, nil
}
