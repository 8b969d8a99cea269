// ABOUTME: Formation catalogue commands
// ABOUTME: List and inspect for every role; create, update and delete for staff

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

var (
	formationsList  listFlags
	formationFile   string
	formationImage  string
	formationFilter struct {
		categorie string
		ville     string
	}
)

var formationsCmd = onRoute(&cobra.Command{
	Use:     "formations",
	Aliases: []string{"formation"},
	Short:   "Browse and manage the formation catalogue",
}, gate.RouteFormations)

var formationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List formations",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		opts := formationsList.options()
		if opts.Filters == nil {
			opts.Filters = map[string]string{}
		}
		opts.Filters["categorie"] = formationFilter.categorie
		opts.Filters["ville"] = formationFilter.ville

		res, err := rt.client.ListFormations(ctx, opts)
		if err != nil {
			return err
		}
		return printList(w, res, &formationsList, export.Formations)
	}),
}

var formationsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one formation",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		f, err := rt.client.GetFormation(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, f, export.Formations([]models.Formation{*f}))
	}),
}

var formationsCreateCmd = onRoute(&cobra.Command{
	Use:   "create",
	Short: "Create a formation from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var f models.Formation
		if err := readPayload(formationFile, &f); err != nil {
			return err
		}
		image, closeImage, err := formationUpload()
		if err != nil {
			return err
		}
		defer closeImage()

		created, err := rt.client.CreateFormation(ctx, &f, image)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Formations([]models.Formation{*created}))
	}),
}, gate.RouteFormationsEdit)

var formationsUpdateCmd = onRoute(&cobra.Command{
	Use:   "update ID",
	Short: "Update a formation from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var f models.Formation
		if err := readPayload(formationFile, &f); err != nil {
			return err
		}
		image, closeImage, err := formationUpload()
		if err != nil {
			return err
		}
		defer closeImage()

		updated, err := rt.client.UpdateFormation(ctx, args[0], &f, image)
		if err != nil {
			return err
		}
		return printRecord(w, updated, export.Formations([]models.Formation{*updated}))
	}),
}, gate.RouteFormationsEdit)

var formationsDeleteCmd = onRoute(&cobra.Command{
	Use:   "delete ID",
	Short: "Delete a formation",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		if err := rt.client.DeleteFormation(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Formation %s deleted\n", args[0])
		return nil
	}),
}, gate.RouteFormationsEdit)

var formationsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List formation categories",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		values, err := rt.client.FormationCategories(ctx)
		if err != nil {
			return err
		}
		return printValues(w, values)
	}),
}

var formationsVillesCmd = &cobra.Command{
	Use:   "villes",
	Short: "List cities where formations take place",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		values, err := rt.client.FormationVilles(ctx)
		if err != nil {
			return err
		}
		return printValues(w, values)
	}),
}

func init() {
	rootCmd.AddCommand(formationsCmd)
	formationsCmd.AddCommand(formationsListCmd, formationsGetCmd, formationsCreateCmd,
		formationsUpdateCmd, formationsDeleteCmd, formationsCategoriesCmd, formationsVillesCmd)

	addListFlags(formationsListCmd, &formationsList)
	formationsListCmd.Flags().StringVar(&formationFilter.categorie, "categorie", "", "Only formations in this category")
	formationsListCmd.Flags().StringVar(&formationFilter.ville, "ville", "", "Only formations in this city")

	for _, c := range []*cobra.Command{formationsCreateCmd, formationsUpdateCmd} {
		c.Flags().StringVar(&formationFile, "file", "", "Formation fields (JSON or YAML, - for stdin)")
		c.Flags().StringVar(&formationImage, "image", "", "Image file sent as multipart upload")
	}
}

// formationUpload opens the --image file, if any
func formationUpload() (*client.Upload, func(), error) {
	if formationImage == "" {
		return nil, func() {}, nil
	}
	u, closer, err := openUpload("image", formationImage)
	if err != nil {
		return nil, nil, err
	}
	return u, func() { closer.Close() }, nil
}

// printValues prints a plain list of strings
func printValues(w io.Writer, values []string) error {
	if IsJSONOutput() {
		return printJSON(w, values)
	}
	fmt.Fprintln(w, strings.Join(values, "\n"))
	return nil
}
