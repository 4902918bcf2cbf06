package store

import (
	"strings"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"gorm.io/datatypes"
)

type roleRow struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	CompanyName    string `gorm:"size:255;not null"`
	Title          string `gorm:"size:255;not null"`
	Context        string `gorm:"type:text"`
	MinYearsExp    int    `gorm:"not null;default:0"`
	RequiredTech   string `gorm:"type:text"`
	RequiresDegree string `gorm:"size:32;not null;default:'none'"`
	MustHaves      string `gorm:"type:text"`
	NiceToHave     string `gorm:"type:text"`
	RedFlags       string `gorm:"type:text"`
	NumQuestions   int    `gorm:"not null;default:5"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (roleRow) TableName() string { return "roles" }

type planRow struct {
	RoleID    int64                              `gorm:"primaryKey;autoIncrement:false"`
	Slots     datatypes.JSONType[interview.Plan] `gorm:"not null"`
	UpdatedAt time.Time
}

func (planRow) TableName() string { return "role_plans" }

type evaluationRow struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	RoleID            int64  `gorm:"index"`
	CandidateName     string `gorm:"size:255"`
	CandidateEmail    string `gorm:"size:255"`
	CandidatePhone    string `gorm:"size:64"`
	CandidateYearsExp int
	CandidateTools    string                                `gorm:"type:text"`
	Answers           datatypes.JSONType[interview.Answers] `gorm:"not null"`
	Scores            datatypes.JSONType[map[string]int]    `gorm:"not null"`
	Reasons           datatypes.JSONType[map[string]string] `gorm:"not null"`
	Summary           string                                `gorm:"type:text"`
	TotalScore        int                                   `gorm:"not null;default:0"`
	CreatedAt         time.Time                             `gorm:"index"`
}

func (evaluationRow) TableName() string { return "evaluations" }

// evaluationSummaryRow is the projection read by ListEvaluations.
type evaluationSummaryRow struct {
	ID             int64
	RoleID         int64
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	TotalScore     int
	CreatedAt      time.Time
}

func newRoleRow(r interview.RoleProfile) roleRow {
	return roleRow{
		ID:             r.ID,
		CompanyName:    r.CompanyName,
		Title:          r.Title,
		Context:        r.Context,
		MinYearsExp:    r.MinYearsExp,
		RequiredTech:   r.RequiredTech,
		RequiresDegree: string(r.Degree),
		MustHaves:      r.MustHaves,
		NiceToHave:     r.NiceToHave,
		RedFlags:       r.RedFlags,
		NumQuestions:   r.NumQuestions,
	}
}

func (r roleRow) profile() interview.RoleProfile {
	degree, err := interview.ParseDegree(r.RequiresDegree)
	if err != nil {
		degree = interview.DegreeNone
	}

	return interview.RoleProfile{
		ID:           r.ID,
		CompanyName:  r.CompanyName,
		Title:        r.Title,
		Context:      r.Context,
		MinYearsExp:  r.MinYearsExp,
		RequiredTech: r.RequiredTech,
		Degree:       degree,
		MustHaves:    r.MustHaves,
		NiceToHave:   r.NiceToHave,
		RedFlags:     r.RedFlags,
		NumQuestions: r.NumQuestions,
	}
}

func newEvaluationRow(e *interview.Evaluation) evaluationRow {
	return evaluationRow{
		RoleID:            e.RoleID,
		CandidateName:     strings.TrimSpace(e.Candidate.Name),
		CandidateEmail:    strings.TrimSpace(e.Candidate.Email),
		CandidatePhone:    strings.TrimSpace(e.Candidate.Phone),
		CandidateYearsExp: e.Candidate.YearsExp,
		CandidateTools:    e.Candidate.Tools,
		Answers:           datatypes.NewJSONType(e.Answers.Clone()),
		Scores:            datatypes.NewJSONType(e.Judgement.ScoreMap()),
		Reasons:           datatypes.NewJSONType(e.Judgement.ReasonMap()),
		Summary:           e.Judgement.Summary,
		TotalScore:        e.Total(),
		CreatedAt:         e.CreatedAt,
	}
}

func (r evaluationRow) evaluation() *interview.Evaluation {
	return &interview.Evaluation{
		ID:     r.ID,
		RoleID: r.RoleID,
		Candidate: interview.Candidate{
			Name:     r.CandidateName,
			Email:    r.CandidateEmail,
			Phone:    r.CandidatePhone,
			YearsExp: r.CandidateYearsExp,
			Tools:    r.CandidateTools,
		},
		Answers:   r.Answers.Data().Clone(),
		Judgement: interview.JudgementFromMaps(r.Scores.Data(), r.Reasons.Data(), r.Summary),
		CreatedAt: r.CreatedAt,
	}
}

func (r evaluationSummaryRow) summary() interview.EvaluationSummary {
	return interview.EvaluationSummary{
		ID:             r.ID,
		RoleID:         r.RoleID,
		CandidateName:  r.CandidateName,
		CandidateEmail: r.CandidateEmail,
		CandidatePhone: r.CandidatePhone,
		Total:          r.TotalScore,
		CreatedAt:      r.CreatedAt,
	}
}
