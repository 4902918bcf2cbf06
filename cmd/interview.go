package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/jobfit/internal/interview"
	"github.com/spigell/jobfit/internal/report"
	"go.uber.org/zap"
)

const (
	PromptRetry     = "Retry"
	PromptAbandon   = "Abandon"
	PromptYes       = "Yes"
	PromptNo        = "No"
	PromptBack      = "back"
	backCommand     = "/back"
	defaultYearsExp = "0"
)

var errAbandoned = errors.New("interview abandoned")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive interview for a saved role",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().Int64P("role", "r", 0, "role id to interview for. Default is to choose interactively.")
}

func runInterview(cmd *cobra.Command) {
	ctx := context.Background()

	d := newDeps(ctx, "stderr")
	defer d.close()

	roleID, _ := cmd.Flags().GetInt64("role")
	role, err := chooseRole(ctx, d, roleID)
	if err != nil {
		if errors.Is(err, errAbandoned) || errors.Is(err, promptui.ErrInterrupt) {
			return
		}
		d.logger.Fatal("choosing a role", zap.Error(err))
	}

	llm, err := d.completer(ctx)
	if err != nil {
		d.logger.Fatal("creating a model client", zap.Error(err))
	}

	maxLogLen := d.config.LLM.MaxLogLength
	engine := interview.NewEngine(interview.EngineDeps{
		Planner:     d.planner(llm),
		Compiler:    interview.NewCompiler(llm, d.logger, maxLogLen),
		Judge:       interview.NewJudge(llm, d.logger, maxLogLen),
		Evaluations: d.store,
		Notifier:    d.notifier(),
		Logger:      d.logger,
	})

	session := interview.NewSession()
	for {
		err := runSession(ctx, engine, session, *role)
		switch {
		case errors.Is(err, errAbandoned), errors.Is(err, promptui.ErrInterrupt):
			engine.Reset(session)
			fmt.Println("Interview abandoned, nothing was saved.")
		case err != nil:
			d.logger.Fatal("running the interview", zap.Error(err))
		default:
			showResult(session)
			if err := engine.Acknowledge(session); err != nil {
				d.logger.Fatal("closing the interview", zap.Error(err))
			}
		}

		if !confirm("Start another interview for this role?") {
			return
		}
	}
}

func chooseRole(ctx context.Context, d *deps, id int64) (*interview.RoleProfile, error) {
	if id != 0 {
		role, ok, err := d.store.GetRole(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("role %d not found", id)
		}
		return role, nil
	}

	roles, err := d.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, errors.New("no roles saved yet, create one with 'jobfit role save -f role.yaml'")
	}

	items := make([]string, 0, len(roles)+1)
	for _, r := range roles {
		items = append(items, fmt.Sprintf("%d %s", r.ID, r.DisplayName()))
	}

	rolePrompt := promptui.Select{
		Label: "Choose a role and press ENTER",
		Items: append(items, PromptBack),
	}

	i, selected, err := rolePrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, errAbandoned
	}

	return &roles[i], nil
}

func runSession(ctx context.Context, engine *interview.Engine, s *interview.Session, role interview.RoleProfile) error {
	if err := engine.Start(s, role); err != nil {
		return err
	}

	candidate, err := askCandidate()
	if err != nil {
		return err
	}

	fmt.Println("Preparing questions...")
	err = engine.SubmitCandidate(ctx, s, candidate)
	for err != nil {
		if errors.Is(err, interview.ErrInvalidAnswer) || s.State() != interview.StateInProgress {
			return err
		}

		fmt.Printf("Preparing the questions failed: %v\n", err)
		retry := promptui.Select{Label: "What now?", Items: []string{PromptRetry, PromptAbandon}}
		if _, action, perr := retry.Run(); perr != nil || action == PromptAbandon {
			return errAbandoned
		}
		err = engine.Prepare(ctx, s)
	}

	if transcript := s.Transcript(); len(transcript) > 0 {
		fmt.Printf("\n%s\n", transcript[0].Content)
	}
	fmt.Printf("Type %s at any text question to abandon the interview.\n\n", backCommand)

	for !s.IsComplete() {
		p, ok := engine.CurrentPrompt(s)
		if !ok {
			return fmt.Errorf("no pending question at step %d", s.Step())
		}

		answer, err := ask(p)
		if err != nil {
			return err
		}

		if err := engine.SubmitAnswer(ctx, s, answer); err != nil {
			if s.IsComplete() {
				// scoring or saving failed, the fallback result is still shown
				fmt.Printf("\nThe interview finished with errors: %v\n", err)
				break
			}
			fmt.Printf("%v\n", err)
		}
	}

	return nil
}

func askCandidate() (interview.Candidate, error) {
	var c interview.Candidate
	var err error

	if c.Name, err = askText("Full name", "", nil); err != nil {
		return c, err
	}
	if c.Email, err = askText("Email", "", nil); err != nil {
		return c, err
	}
	if c.Phone, err = askText("Phone", "", nil); err != nil {
		return c, err
	}

	years, err := askText("Years of experience", defaultYearsExp, func(in string) error {
		n, err := strconv.Atoi(strings.TrimSpace(in))
		if err != nil || n < 0 || n > 50 {
			return errors.New("enter a number between 0 and 50")
		}
		return nil
	})
	if err != nil {
		return c, err
	}
	c.YearsExp, _ = strconv.Atoi(strings.TrimSpace(years))

	if c.Tools, err = askText("Main tools and technologies", "", nil); err != nil {
		return c, err
	}
	return c, nil
}

func ask(p interview.Prompt) (string, error) {
	label := fmt.Sprintf("Question %d/%d", p.Step, p.Total)
	fmt.Printf("%s\n%s\n", label, p.Question)

	switch p.Kind {
	case interview.InputChoice:
		sel := promptui.Select{Label: label, Items: append(append([]string{}, p.Options...), PromptBack)}
		_, choice, err := sel.Run()
		if err != nil {
			return "", err
		}
		if choice == PromptBack {
			return "", errAbandoned
		}
		return choice, nil
	case interview.InputScale:
		return askText(fmt.Sprintf("%s (%d-%d)", label, p.Min, p.Max), strconv.Itoa(p.Default), validator(p))
	default:
		return askText(label, "", validator(p))
	}
}

func validator(p interview.Prompt) promptui.ValidateFunc {
	return func(in string) error {
		if strings.TrimSpace(in) == backCommand {
			return nil
		}
		_, err := p.Normalize(in)
		return err
	}
}

func askText(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{Label: label, Default: def, Validate: validate}
	answer, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == backCommand {
		return "", errAbandoned
	}
	return answer, nil
}

func confirm(label string) bool {
	sel := promptui.Select{Label: label, Items: []string{PromptYes, PromptNo}}
	_, answer, err := sel.Run()
	return err == nil && answer == PromptYes
}

func showResult(s *interview.Session) {
	transcript := s.Transcript()
	if len(transcript) > 0 {
		fmt.Printf("\n%s\n\n", transcript[len(transcript)-1].Content)
	}

	evaluation := s.Evaluation()
	if evaluation == nil {
		return
	}

	if err := report.Markdown(os.Stdout, evaluation, report.Options{}); err != nil {
		fmt.Printf("rendering the report failed: %v\n", err)
	}
	if evaluation.ID != 0 {
		fmt.Printf("\nSaved as evaluation %d. Export it with 'jobfit report export %d'.\n", evaluation.ID, evaluation.ID)
	}
}
