package store

import (
	"testing"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRowRoundTrip(t *testing.T) {
	role := interview.RoleProfile{
		ID:           3,
		CompanyName:  "Acme",
		Title:        "SRE",
		Context:      "On-call heavy team.",
		MinYearsExp:  4,
		RequiredTech: "Go, Terraform",
		Degree:       interview.DegreeMaster,
		MustHaves:    "Incident command",
		NumQuestions: 6,
	}

	row := newRoleRow(role)
	assert.Equal(t, "master", row.RequiresDegree)
	assert.Equal(t, role, row.profile())
}

func TestRoleRowUnknownDegree(t *testing.T) {
	row := roleRow{CompanyName: "Acme", Title: "SRE", RequiresDegree: "diploma", NumQuestions: 5}
	assert.Equal(t, interview.DegreeNone, row.profile().Degree)
}

func TestEvaluationRowRoundTrip(t *testing.T) {
	judgement := interview.FallbackJudgement()
	judgement.Scores[interview.DecisionQuality] = 15
	judgement.Reasons[interview.DecisionQuality] = "Clear trade-offs."
	judgement.Summary = "Solid."

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	evaluation := &interview.Evaluation{
		RoleID:    3,
		Candidate: interview.Candidate{Name: " Ada ", Email: "ada@example.com", YearsExp: 9, Tools: "vim"},
		Answers:   interview.Answers{"ownership": "Led the migration."},
		Judgement: judgement,
		CreatedAt: created,
	}

	row := newEvaluationRow(evaluation)
	assert.Equal(t, "Ada", row.CandidateName)
	assert.Equal(t, 15, row.TotalScore)
	assert.Equal(t, 15, row.Scores.Data()["Decision quality"])

	row.ID = 11
	restored := row.evaluation()
	require.NotNil(t, restored)
	assert.Equal(t, int64(11), restored.ID)
	assert.Equal(t, judgement, restored.Judgement)
	assert.Equal(t, evaluation.Answers, restored.Answers)
	assert.Equal(t, created, restored.CreatedAt)
	assert.Equal(t, 15, restored.Total())
}
