package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spigell/jobfit/internal/interview"
	"github.com/spigell/jobfit/internal/setup"
	"go.uber.org/zap"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage role profiles and their interview plans",
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved roles",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		roles, err := d.store.ListRoles(ctx)
		if err != nil {
			d.logger.Fatal("listing roles", zap.Error(err))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tQUESTIONS\tDEGREE")
		for _, r := range roles {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.ID, r.CompanyName, r.Title, r.NumQuestions, r.Degree.Label())
		}
		tw.Flush()
	},
}

var roleShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a role and its stored plan",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		id := parseID(d, args[0])
		role, ok, err := d.store.GetRole(ctx, id)
		if err != nil {
			d.logger.Fatal("loading role", zap.Error(err))
		}
		if !ok {
			d.logger.Fatal("role not found", zap.Int64("role_id", id))
		}

		plan, _, err := d.plans.GetPlan(ctx, id)
		if err != nil {
			d.logger.Warn("loading plan", zap.Error(err))
		}

		printJSON(d, struct {
			Role *interview.RoleProfile `json:"role"`
			Plan interview.Plan         `json:"plan"`
		}{Role: role, Plan: plan})
	},
}

var roleSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or update a role from a file and generate its plan",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		file, _ := cmd.Flags().GetString("file")
		id, _ := cmd.Flags().GetInt64("id")

		role, err := setup.LoadRoleFile(file)
		if err != nil {
			d.logger.Fatal("loading role file", zap.Error(err))
		}
		if id != 0 {
			role.ID = id
		}

		llm, err := d.completer(ctx)
		if err != nil {
			d.logger.Fatal("creating a model client", zap.Error(err))
		}

		res, err := d.setupService(llm).SaveRole(ctx, role)
		if err != nil {
			d.logger.Fatal("saving role", zap.Error(err))
		}

		action := "updated"
		if res.Created {
			action = "created"
		}
		fmt.Printf("Role %d %s: %s\n", res.Role.ID, action, res.Role.DisplayName())

		if res.PlanErr != nil {
			d.logger.Warn("the role was saved but its plan could not be generated",
				zap.Error(res.PlanErr),
				zap.String("hint", fmt.Sprintf("retry with 'jobfit role plan %d'", res.Role.ID)),
			)
			return
		}
		printPlan(res.Plan)
	},
}

var rolePlanCmd = &cobra.Command{
	Use:   "plan ID",
	Short: "Regenerate the interview plan of a role",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		id := parseID(d, args[0])

		llm, err := d.completer(ctx)
		if err != nil {
			d.logger.Fatal("creating a model client", zap.Error(err))
		}

		plan, err := d.setupService(llm).RegeneratePlan(ctx, id)
		if err != nil {
			d.logger.Fatal("regenerating plan", zap.Error(err))
		}
		printPlan(plan)
	},
}

var roleDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a role and its plan. Past evaluations are kept.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := newDeps(ctx)
		defer d.close()

		id := parseID(d, args[0])

		if yes, _ := cmd.Flags().GetBool("yes"); !yes && !confirm(fmt.Sprintf("Delete role %d?", id)) {
			return
		}

		// the plan cache is the only collaborator DeleteRole needs
		if err := d.setupService(nil).DeleteRole(ctx, id); err != nil {
			d.logger.Fatal("deleting role", zap.Error(err))
		}
		fmt.Printf("Role %d deleted.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleListCmd, roleShowCmd, roleSaveCmd, rolePlanCmd, roleDeleteCmd)

	roleSaveCmd.Flags().StringP("file", "f", "", "role profile file (yaml, json or toml)")
	roleSaveCmd.Flags().Int64("id", 0, "update the role with this id instead of creating a new one")
	roleSaveCmd.MarkFlagRequired("file")

	roleDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func parseID(d *deps, s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		d.logger.Fatal("invalid id", zap.String("id", s))
	}
	return id
}

func printJSON(d *deps, v any) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.logger.Fatal("encoding output", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

func printPlan(plan interview.Plan) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFOCUS")
	for _, slot := range plan {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", slot.ID, slot.Type, slot.Focus)
	}
	tw.Flush()
}
