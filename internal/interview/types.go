package interview

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

// Degree is the education requirement of a role.
type Degree string

const (
	DegreeNone     Degree = "none"
	DegreeBachelor Degree = "bachelor"
	DegreeMaster   Degree = "master"
	DegreePhD      Degree = "phd"
)

var degreeLabels = map[Degree]string{
	DegreeNone:     "No",
	DegreeBachelor: "Yes - Bachelor's",
	DegreeMaster:   "Yes - Master's",
	DegreePhD:      "Yes - PhD",
}

// Degrees lists every degree in display order.
func Degrees() []Degree {
	return []Degree{DegreeNone, DegreeBachelor, DegreeMaster, DegreePhD}
}

// Label returns the human readable form shown to interviewers and models.
func (d Degree) Label() string {
	if label, ok := degreeLabels[d]; ok {
		return label
	}
	return degreeLabels[DegreeNone]
}

// ParseDegree accepts either the code ("master") or the label ("Yes - Master's").
// An empty value means no degree is required.
func ParseDegree(s string) (Degree, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DegreeNone, nil
	}
	for _, d := range Degrees() {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Label()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown degree %q", ErrInvalidRole, s)
}

func (d Degree) MarshalText() ([]byte, error) {
	return []byte(d.Label()), nil
}

func (d *Degree) UnmarshalText(text []byte) error {
	parsed, err := ParseDegree(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// RoleProfile describes the job an interview is tailored to.
// ID 0 means the role has not been persisted yet.
type RoleProfile struct {
	ID           int64  `json:"id,omitempty" mapstructure:"id"`
	CompanyName  string `json:"company_name" mapstructure:"company-name"`
	Title        string `json:"title" mapstructure:"title"`
	Context      string `json:"context" mapstructure:"context"`
	MinYearsExp  int    `json:"min_years_exp" mapstructure:"min-years-exp"`
	RequiredTech string `json:"required_tech" mapstructure:"required-tech"`
	Degree       Degree `json:"requires_degree" mapstructure:"requires-degree"`
	MustHaves    string `json:"must_haves" mapstructure:"must-haves"`
	NiceToHave   string `json:"nice_to_have" mapstructure:"nice-to-have"`
	RedFlags     string `json:"red_flags" mapstructure:"red-flags"`
	NumQuestions int    `json:"num_questions" mapstructure:"num-questions"`
}

// Validate checks the ranges the rest of the core relies on.
func (r *RoleProfile) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: role is required", ErrInvalidRole)
	}
	if strings.TrimSpace(r.CompanyName) == "" || strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: company name and title are required", ErrInvalidRole)
	}
	if r.MinYearsExp < 0 {
		return fmt.Errorf("%w: min years of experience must not be negative", ErrInvalidRole)
	}
	if r.NumQuestions < MinQuestions || r.NumQuestions > MaxQuestions {
		return fmt.Errorf("%w: number of questions must be between %d and %d, got %d", ErrInvalidRole, MinQuestions, MaxQuestions, r.NumQuestions)
	}
	if _, ok := degreeLabels[r.Degree]; !ok && r.Degree != "" {
		return fmt.Errorf("%w: unknown degree %q", ErrInvalidRole, r.Degree)
	}
	return nil
}

// Normalize trims text fields and fills defaults for unset values.
func (r *RoleProfile) Normalize() {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Title = strings.TrimSpace(r.Title)
	r.Context = strings.TrimSpace(r.Context)
	r.RequiredTech = strings.TrimSpace(r.RequiredTech)
	r.MustHaves = strings.TrimSpace(r.MustHaves)
	r.NiceToHave = strings.TrimSpace(r.NiceToHave)
	r.RedFlags = strings.TrimSpace(r.RedFlags)
	if r.Degree == "" {
		r.Degree = DegreeNone
	}
	if r.NumQuestions == 0 {
		r.NumQuestions = DefaultQuestions
	}
}

// DisplayName is "Company – Title" as shown in role pickers.
func (r RoleProfile) DisplayName() string {
	company := r.CompanyName
	if company == "" {
		company = "Company"
	}
	title := r.Title
	if title == "" {
		title = "Role"
	}
	return company + " – " + title
}

// Candidate is the pre-screen captured before the first question.
type Candidate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	YearsExp int    `json:"years_exp"`
	Tools    string `json:"tools"`
}

func (c Candidate) Validate() error {
	if c.YearsExp < 0 || c.YearsExp > 50 {
		return fmt.Errorf("%w: years of experience must be between 0 and 50", ErrInvalidAnswer)
	}
	return nil
}

// SlotType decides how a question is rendered and answered.
type SlotType string

const (
	SlotOpen  SlotType = "open"
	SlotMCQ   SlotType = "mcq"
	SlotScale SlotType = "scale"
)

// Valid reports whether t is one of the known slot types.
func (t SlotType) Valid() bool {
	switch t {
	case SlotOpen, SlotMCQ, SlotScale:
		return true
	default:
		return false
	}
}

// PlanSlot is one planned question. Question stays empty until compiled.
type PlanSlot struct {
	ID       int      `json:"id" mapstructure:"id"`
	Type     SlotType `json:"type" mapstructure:"type"`
	Focus    string   `json:"focus" mapstructure:"focus"`
	Question string   `json:"question,omitempty" mapstructure:"question"`
}

// Plan is the ordered list of slots for one interview.
type Plan []PlanSlot

// Clone returns a copy that can be modified without touching p.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	copy(out, p)
	return out
}

// Answers maps a slot focus to the candidate's answer.
type Answers map[string]string

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Evaluation is the persisted outcome of a completed interview.
type Evaluation struct {
	ID        int64
	RoleID    int64
	Candidate Candidate
	Answers   Answers
	Judgement Judgement
	CreatedAt time.Time
}

// Total is the sum of the criterion scores, 0..100.
func (e *Evaluation) Total() int {
	if e == nil {
		return 0
	}
	return e.Judgement.Total()
}

// EvaluationSummary is a row in the evaluation history list.
type EvaluationSummary struct {
	ID             int64
	RoleID         int64
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	Total          int
	CreatedAt      time.Time
}
