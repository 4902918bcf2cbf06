package report

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/spigell/jobfit/internal/interview"
)

//go:embed report.md.tmpl
var markdownTemplate string

var markdown = template.Must(template.New("report").Parse(markdownTemplate))

type criterionView struct {
	Name   string
	Score  int
	Reason string
}

type view struct {
	Candidate    interview.Candidate
	Summary      string
	Total        int
	MaxTotal     int
	MaxCriterion int
	Criteria     []criterionView
	WithReasons  bool
}

// Options tune the markdown output.
type Options struct {
	// Reasons adds the per-criterion justifications.
	Reasons bool
}

// Markdown writes the score report of an evaluation.
func Markdown(w io.Writer, evaluation *interview.Evaluation, opts Options) error {
	if evaluation == nil {
		return fmt.Errorf("evaluation is required")
	}

	v := view{
		Candidate:    evaluation.Candidate,
		Summary:      strings.TrimSpace(evaluation.Judgement.Summary),
		Total:        evaluation.Total(),
		MaxTotal:     interview.MaxTotalScore,
		MaxCriterion: interview.MaxCriterionScore,
		WithReasons:  opts.Reasons,
	}
	for _, c := range interview.Criteria() {
		v.Criteria = append(v.Criteria, criterionView{
			Name:   c.String(),
			Score:  evaluation.Judgement.Score(c),
			Reason: evaluation.Judgement.Reason(c),
		})
	}

	return markdown.Execute(w, v)
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Filename is the suggested file name for an exported report.
func Filename(evaluation *interview.Evaluation) string {
	name := "candidate"
	if evaluation != nil {
		if n := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(evaluation.Candidate.Name), "_"), "_"); n != "" {
			name = n
		}
	}
	return "jobfitindex_anti_portfolio_" + name + ".md"
}

// Label is the one-line description of a past evaluation.
func Label(s interview.EvaluationSummary) string {
	name := strings.TrimSpace(s.CandidateName)
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s – %s", name, s.CreatedAt.Format("2006-01-02"))
}

// Table writes the evaluation history as aligned columns.
func Table(w io.Writer, items []interview.EvaluationSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tROLE\tCANDIDATE\tEMAIL\tSCORE")
	for _, s := range items {
		name := s.CandidateName
		if name == "" {
			name = "Unknown"
		}
		email := s.CandidateEmail
		if email == "" {
			email = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%d/%d\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.RoleID, name, email, s.Total, interview.MaxTotalScore)
	}
	return tw.Flush()
}
