package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spigell/jobfit/internal/filtering"
	"github.com/spigell/jobfit/internal/interview"
	"github.com/spigell/jobfit/internal/report"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Review past evaluations",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past evaluations, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		items, err := d.store.ListEvaluations(ctx)
		if err != nil {
			d.logger.Fatal("listing evaluations", zap.Error(err))
		}

		steps := filtering.New(listFilterConfig(cmd))
		for _, status := range filtering.Describe(steps) {
			d.logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.Any("details", status.Details))
		}

		items, err = filtering.Run(ctx, filtering.Deps{Logger: d.logger, Roles: d.store}, steps, items)
		if err != nil {
			d.logger.Fatal("filtering evaluations", zap.Error(err))
		}

		if len(items) == 0 {
			fmt.Println("No evaluations yet. Complete an interview first.")
			return
		}
		if err := report.Table(os.Stdout, items); err != nil {
			d.logger.Fatal("printing evaluations", zap.Error(err))
		}
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the score report of an evaluation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		evaluation := loadEvaluation(ctx, d, args[0])
		reasons, _ := cmd.Flags().GetBool("reasons")

		if err := report.Markdown(os.Stdout, evaluation, report.Options{Reasons: reasons}); err != nil {
			d.logger.Fatal("rendering report", zap.Error(err))
		}
	},
}

var reportExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Write the score report of an evaluation to a markdown file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		evaluation := loadEvaluation(ctx, d, args[0])
		reasons, _ := cmd.Flags().GetBool("reasons")

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = report.Filename(evaluation)
		} else if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, report.Filename(evaluation))
		}

		f, err := os.Create(output)
		if err != nil {
			d.logger.Fatal("creating report file", zap.Error(err))
		}

		err = report.Markdown(f, evaluation, report.Options{Reasons: reasons})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			d.logger.Fatal("writing report", zap.Error(err), zap.String("filename", output))
		}

		d.logger.Info("report exported", zap.String("filename", output), zap.Int64("evaluation_id", evaluation.ID))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportExportCmd)

	reportListCmd.Flags().Int64Slice("role", nil, "only evaluations of these role ids")
	reportListCmd.Flags().String("company", "", "only evaluations of roles at this company")
	reportListCmd.Flags().Int("min-score", 0, "only evaluations with at least this total score")
	reportListCmd.Flags().Duration("since", 0, "only evaluations newer than this, e.g. 168h")
	reportListCmd.Flags().String("candidate", "", "only candidates whose name or email contains this text")

	for _, c := range []*cobra.Command{reportShowCmd, reportExportCmd} {
		c.Flags().Bool("reasons", false, "include the per-criterion justifications")
	}
	reportExportCmd.Flags().StringP("output", "o", "", "output file or directory. Default is a file named after the candidate.")
}

func listFilterConfig(cmd *cobra.Command) filtering.Config {
	roles, _ := cmd.Flags().GetInt64Slice("role")
	company, _ := cmd.Flags().GetString("company")
	minScore, _ := cmd.Flags().GetInt("min-score")
	since, _ := cmd.Flags().GetDuration("since")
	candidate, _ := cmd.Flags().GetString("candidate")

	return filtering.Config{
		RoleIDs:   roles,
		Company:   company,
		MinScore:  minScore,
		Since:     since,
		Candidate: candidate,
	}
}

func loadEvaluation(ctx context.Context, d *deps, arg string) *interview.Evaluation {
	id := parseID(d, arg)

	evaluation, ok, err := d.store.GetEvaluation(ctx, id)
	if err != nil {
		d.logger.Fatal("loading evaluation", zap.Error(err))
	}
	if !ok {
		d.logger.Fatal("evaluation not found", zap.Int64("evaluation_id", id))
	}
	return evaluation
}
