// ABOUTME: Enrollment commands including CSV export
// ABOUTME: Status changes are validated locally before reaching the API

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

var (
	inscriptionsList    listFlags
	inscriptionStatut   string
	inscriptionFile     string
	inscriptionDocs     []string
	inscriptionsExport  exportFlags
	inscriptionStatuses = []string{models.InscriptionEnAttente, models.InscriptionConfirmee, models.InscriptionAnnulee}
)

// exportFlags configure a CSV export
type exportFlags struct {
	output string
	comma  string
	bom    bool
}

var inscriptionsCmd = onRoute(&cobra.Command{
	Use:     "inscriptions",
	Aliases: []string{"inscription"},
	Short:   "Manage enrollments",
}, gate.RouteInscriptions)

var inscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inscriptions",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListInscriptions(ctx, inscriptionsOptions(&inscriptionsList))
		if err != nil {
			return err
		}
		return printList(w, res, &inscriptionsList, export.Inscriptions)
	}),
}

var inscriptionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a participant from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var in models.Inscription
		if err := readPayload(inscriptionFile, &in); err != nil {
			return err
		}

		var docs []*client.Upload
		for _, path := range inscriptionDocs {
			u, closer, err := openUpload("documents", path)
			if err != nil {
				return err
			}
			defer closer.Close()
			docs = append(docs, u)
		}

		created, err := rt.client.CreateInscription(ctx, &in, docs...)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Inscriptions([]models.Inscription{*created}))
	}),
}

var inscriptionsStatusCmd = &cobra.Command{
	Use:   "status ID STATUT",
	Short: "Change an inscription status (EN_ATTENTE, CONFIRMEE, ANNULEE)",
	Args:  cobra.ExactArgs(2),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		statut, err := parseInscriptionStatut(args[1])
		if err != nil {
			return err
		}
		updated, err := rt.client.UpdateInscriptionStatus(ctx, args[0], statut)
		if err != nil {
			return err
		}
		return printRecord(w, updated, export.Inscriptions([]models.Inscription{*updated}))
	}),
}

var inscriptionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export inscriptions to CSV",
	Long: `Export inscriptions to CSV with a header row. Search, sort and status
filters apply as for 'list'. Writes to stdout unless --output is given.`,
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListInscriptions(ctx, inscriptionsOptions(&inscriptionsList))
		if err != nil {
			return err
		}
		items, err := selectItems(res.Items, &inscriptionsList, export.Inscriptions)
		if err != nil {
			return err
		}
		return writeExport(w, export.Inscriptions(items), inscriptionsExport)
	}),
}

func init() {
	rootCmd.AddCommand(inscriptionsCmd)
	inscriptionsCmd.AddCommand(inscriptionsListCmd, inscriptionsCreateCmd, inscriptionsStatusCmd, inscriptionsExportCmd)

	for _, c := range []*cobra.Command{inscriptionsListCmd, inscriptionsExportCmd} {
		addListFlags(c, &inscriptionsList)
		c.Flags().StringVar(&inscriptionStatut, "statut", "", "Only inscriptions with this status")
	}
	inscriptionsCreateCmd.Flags().StringVar(&inscriptionFile, "file", "", "Inscription fields (JSON or YAML, - for stdin)")
	inscriptionsCreateCmd.Flags().StringSliceVar(&inscriptionDocs, "document", nil, "Supporting document (repeatable)")

	inscriptionsExportCmd.Flags().StringVarP(&inscriptionsExport.output, "output", "o", "", "CSV file to write (default: stdout)")
	inscriptionsExportCmd.Flags().StringVar(&inscriptionsExport.comma, "comma", ";", "Field separator")
	inscriptionsExportCmd.Flags().BoolVar(&inscriptionsExport.bom, "bom", false, "Prefix a UTF-8 BOM for spreadsheet tools")
}

func inscriptionsOptions(f *listFlags) *client.ListOptions {
	opts := f.options()
	if inscriptionStatut != "" {
		if opts.Filters == nil {
			opts.Filters = map[string]string{}
		}
		opts.Filters["statut"] = strings.ToUpper(inscriptionStatut)
	}
	return opts
}

func parseInscriptionStatut(s string) (string, error) {
	statut := strings.ToUpper(strings.TrimSpace(s))
	if !slices.Contains(inscriptionStatuses, statut) {
		return "", fmt.Errorf("invalid status %q (valid: %s)", s, strings.Join(inscriptionStatuses, ", "))
	}
	return statut, nil
}

// writeExport writes t as CSV to the --output file or w
func writeExport(w io.Writer, t export.Table, f exportFlags) error {
	comma, size := utf8.DecodeRuneInString(f.comma)
	if comma == utf8.RuneError || size != len(f.comma) {
		return errors.New("--comma must be a single character")
	}
	opts := export.CSVOptions{Comma: comma, BOM: f.bom}

	if f.output == "" || f.output == "-" {
		return export.WriteCSV(w, t, opts)
	}

	file, err := os.Create(f.output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.output, err)
	}
	if err := export.WriteCSV(file, t, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.output, err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d inscription(s) to %s\n", len(t.Rows), f.output)
	return nil
}
