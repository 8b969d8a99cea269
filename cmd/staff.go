// ABOUTME: Formateur, planning and entreprise commands
// ABOUTME: Plannings are readable by every role and scoped to the caller for formateurs

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

var (
	formateursList  listFlags
	planningsList   listFlags
	entreprisesList listFlags
	staffFile       string
)

var formateursCmd = onRoute(&cobra.Command{
	Use:     "formateurs",
	Aliases: []string{"formateur"},
	Short:   "Manage trainers",
}, gate.RouteFormateurs)

var formateursListCmd = &cobra.Command{
	Use:   "list",
	Short: "List formateurs",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListFormateurs(ctx, formateursList.options())
		if err != nil {
			return err
		}
		return printList(w, res, &formateursList, export.Formateurs)
	}),
}

var formateursGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one formateur",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		f, err := rt.client.GetFormateur(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, f, export.Formateurs([]models.Formateur{*f}))
	}),
}

var formateursCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a formateur from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var f models.Formateur
		if err := readPayload(staffFile, &f); err != nil {
			return err
		}
		created, err := rt.client.CreateFormateur(ctx, &f)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Formateurs([]models.Formateur{*created}))
	}),
}

var planningsCmd = onRoute(&cobra.Command{
	Use:     "plannings",
	Aliases: []string{"planning"},
	Short:   "Browse and schedule sessions",
}, gate.RoutePlannings)

var planningsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plannings (formateurs only see their own)",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		opts := planningsList.options()
		scopeToFormateur(rt, &opts.Filters)
		res, err := rt.client.ListPlannings(ctx, opts)
		if err != nil {
			return err
		}
		return printList(w, res, &planningsList, export.Plannings)
	}),
}

var planningsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one planning",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		p, err := rt.client.GetPlanning(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, p, export.Plannings([]models.Planning{*p}))
	}),
}

var planningsCreateCmd = onRoute(&cobra.Command{
	Use:   "create",
	Short: "Schedule a session from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var p models.Planning
		if err := readPayload(staffFile, &p); err != nil {
			return err
		}
		if !p.DateFin.IsZero() && p.DateFin.Before(p.DateDebut) {
			return fmt.Errorf("dateFin must not be before dateDebut")
		}
		created, err := rt.client.CreatePlanning(ctx, &p)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Plannings([]models.Planning{*created}))
	}),
}, gate.RoutePlanningsEdit)

var entreprisesCmd = onRoute(&cobra.Command{
	Use:     "entreprises",
	Aliases: []string{"entreprise"},
	Short:   "Manage client companies",
}, gate.RouteEntreprises)

var entreprisesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entreprises",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListEntreprises(ctx, entreprisesList.options())
		if err != nil {
			return err
		}
		return printList(w, res, &entreprisesList, export.Entreprises)
	}),
}

var entreprisesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one entreprise",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		e, err := rt.client.GetEntreprise(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, e, export.Entreprises([]models.Entreprise{*e}))
	}),
}

var entreprisesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an entreprise from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var e models.Entreprise
		if err := readPayload(staffFile, &e); err != nil {
			return err
		}
		created, err := rt.client.CreateEntreprise(ctx, &e)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Entreprises([]models.Entreprise{*created}))
	}),
}

var entreprisesUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an entreprise from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var e models.Entreprise
		if err := readPayload(staffFile, &e); err != nil {
			return err
		}
		updated, err := rt.client.UpdateEntreprise(ctx, args[0], &e)
		if err != nil {
			return err
		}
		return printRecord(w, updated, export.Entreprises([]models.Entreprise{*updated}))
	}),
}

var entreprisesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entreprise",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		if err := rt.client.DeleteEntreprise(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Entreprise %s deleted\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(formateursCmd, planningsCmd, entreprisesCmd)
	formateursCmd.AddCommand(formateursListCmd, formateursGetCmd, formateursCreateCmd)
	planningsCmd.AddCommand(planningsListCmd, planningsGetCmd, planningsCreateCmd)
	entreprisesCmd.AddCommand(entreprisesListCmd, entreprisesGetCmd, entreprisesCreateCmd,
		entreprisesUpdateCmd, entreprisesDeleteCmd)

	addListFlags(formateursListCmd, &formateursList)
	addListFlags(planningsListCmd, &planningsList)
	addListFlags(entreprisesListCmd, &entreprisesList)

	for _, c := range []*cobra.Command{formateursCreateCmd, planningsCreateCmd, entreprisesCreateCmd, entreprisesUpdateCmd} {
		c.Flags().StringVar(&staffFile, "file", "", "Record fields (JSON or YAML, - for stdin)")
	}
}

// scopeToFormateur restricts a formateur's listing to their own records
func scopeToFormateur(rt *runtime, filters *map[string]string) {
	s := rt.session.Snapshot()
	if s.Role() != models.RoleFormateur || s.User == nil {
		return
	}
	if *filters == nil {
		*filters = map[string]string{}
	}
	(*filters)["formateur"] = s.User.ID
}
