// ABOUTME: Recruitment and evaluation commands
// ABOUTME: Candidature decisions are admin-only; evaluation stats are scoped per formateur

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/dashboard"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/tui/widgets"
)

var (
	candidaturesList listFlags
	candidatureFile  string
	candidatureCV    string
	candidatureDocs  []string

	evaluationsList     listFlags
	evaluationFile      string
	evaluationFormation string
)

var candidaturesCmd = onRoute(&cobra.Command{
	Use:     "candidatures",
	Aliases: []string{"candidature"},
	Short:   "Review trainer applications",
}, gate.RouteCandidatures)

var candidaturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidatures",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		res, err := rt.client.ListCandidatures(ctx, candidaturesList.options())
		if err != nil {
			return err
		}
		return printList(w, res, &candidaturesList, export.Candidatures)
	}),
}

var candidaturesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File an application from a JSON or YAML file with its CV",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var cand models.Candidature
		if err := readPayload(candidatureFile, &cand); err != nil {
			return err
		}

		var files []*client.Upload
		if candidatureCV != "" {
			u, closer, err := openUpload("cv", candidatureCV)
			if err != nil {
				return err
			}
			defer closer.Close()
			files = append(files, u)
		}
		for _, path := range candidatureDocs {
			u, closer, err := openUpload("documents", path)
			if err != nil {
				return err
			}
			defer closer.Close()
			files = append(files, u)
		}

		created, err := rt.client.CreateCandidature(ctx, &cand, files...)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Candidatures([]models.Candidature{*created}))
	}),
}

var candidaturesAcceptCmd = &cobra.Command{
	Use:   "accept ID",
	Short: "Accept a candidature",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		c, err := rt.client.AcceptCandidature(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, c, export.Candidatures([]models.Candidature{*c}))
	}),
}

var candidaturesRejectCmd = &cobra.Command{
	Use:   "reject ID",
	Short: "Reject a candidature",
	Args:  cobra.ExactArgs(1),
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		c, err := rt.client.RejectCandidature(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(w, c, export.Candidatures([]models.Candidature{*c}))
	}),
}

var evaluationsCmd = onRoute(&cobra.Command{
	Use:     "evaluations",
	Aliases: []string{"evaluation"},
	Short:   "Session feedback",
}, gate.RouteEvaluations)

var evaluationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluations (formateurs only see their own sessions)",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		opts := evaluationsList.options()
		scopeToFormateur(rt, &opts.Filters)
		res, err := rt.client.ListEvaluations(ctx, opts)
		if err != nil {
			return err
		}
		return printList(w, res, &evaluationsList, export.Evaluations)
	}),
}

var evaluationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit an evaluation from a JSON or YAML file",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		var e models.Evaluation
		if err := readPayload(evaluationFile, &e); err != nil {
			return err
		}
		if e.Note < 1 || e.Note > 5 {
			return fmt.Errorf("note must be between 1 and 5, got %d", e.Note)
		}
		created, err := rt.client.CreateEvaluation(ctx, &e)
		if err != nil {
			return err
		}
		return printRecord(w, created, export.Evaluations([]models.Evaluation{*created}))
	}),
}

var evaluationsStatsCmd = onRoute(&cobra.Command{
	Use:   "stats",
	Short: "Show the evaluation average and note distribution",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		opts := &client.ListOptions{Filters: map[string]string{"formation": evaluationFormation}}
		scopeToFormateur(rt, &opts.Filters)
		stats, err := rt.client.EvaluationStats(ctx, opts)
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			return printJSON(w, stats)
		}
		fmt.Fprintln(w, formatStatsHuman(stats))
		return nil
	}),
}, gate.RouteEvaluationStat)

func init() {
	rootCmd.AddCommand(candidaturesCmd, evaluationsCmd)
	candidaturesCmd.AddCommand(candidaturesListCmd, candidaturesCreateCmd, candidaturesAcceptCmd, candidaturesRejectCmd)
	evaluationsCmd.AddCommand(evaluationsListCmd, evaluationsCreateCmd, evaluationsStatsCmd)

	addListFlags(candidaturesListCmd, &candidaturesList)
	candidaturesCreateCmd.Flags().StringVar(&candidatureFile, "file", "", "Candidature fields (JSON or YAML, - for stdin)")
	candidaturesCreateCmd.Flags().StringVar(&candidatureCV, "cv", "", "CV file")
	candidaturesCreateCmd.Flags().StringSliceVar(&candidatureDocs, "document", nil, "Extra document (repeatable)")

	addListFlags(evaluationsListCmd, &evaluationsList)
	evaluationsCreateCmd.Flags().StringVar(&evaluationFile, "file", "", "Evaluation fields (JSON or YAML, - for stdin)")
	evaluationsStatsCmd.Flags().StringVar(&evaluationFormation, "formation", "", "Restrict to one formation ID")
}

// formatStatsHuman renders the average and one bar per note
func formatStatsHuman(stats *models.EvaluationStats) string {
	out := fmt.Sprintf("Évaluations: %d\nMoyenne:     %.1f/5\n", stats.Total, stats.Moyenne)
	if stats.Total == 0 {
		return out + "Aucune évaluation"
	}

	bars, total := dashboard.Shares(stats.Repartition, []string{"5", "4", "3", "2", "1"})

	cfg := widgets.DefaultProgressBarConfig()
	out += "\n"
	for _, b := range bars {
		out += widgets.ShareBar(b.Label+"★", b.Count, b.Percent, 3, cfg) + "\n"
	}
	out += fmt.Sprintf("Total réparti: %d", total)
	return out
}
