package interview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spigell/jobfit/internal/ai"
)

const (
	introMessage      = "Welcome to JobFitIndex. This interview is tailored to this specific role and company. We will focus on how you work, not just what you did."
	completionMessage = "The interview is complete. The score report is being generated in the background."

	ScaleMin     = 1
	ScaleMax     = 10
	ScaleDefault = 7
)

// State is the coarse phase of a session.
type State int

const (
	StateNotStarted State = iota
	StateAwaitingCandidate
	StateInProgress
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateAwaitingCandidate:
		return "awaiting_candidate"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Session is the state of one candidate's interview. It is driven by Engine
// and is not safe for concurrent use.
type Session struct {
	id         string
	state      State
	role       RoleProfile
	candidate  Candidate
	plan       Plan
	step       int
	transcript []ai.Message
	answers    Answers
	evaluation *Evaluation
	err        error
}

// NewSession returns a session waiting for a role.
func NewSession() *Session {
	s := &Session{}
	s.clear()
	return s
}

func (s *Session) clear() {
	*s = Session{
		id:      uuid.NewString(),
		state:   StateNotStarted,
		answers: Answers{},
	}
}

// ID correlates log entries of one session.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Step is 0 before the first question, 1..N while slot N is pending and N+1 once complete.
func (s *Session) Step() int { return s.step }

// TotalSteps is the number of questions in the compiled plan.
func (s *Session) TotalSteps() int { return len(s.plan) }

func (s *Session) Role() RoleProfile { return s.role }

func (s *Session) Candidate() Candidate { return s.candidate }

func (s *Session) Plan() Plan { return s.plan.Clone() }

func (s *Session) Answers() Answers { return s.answers.Clone() }

func (s *Session) Transcript() []ai.Message {
	out := make([]ai.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// IsComplete reports whether every question has been answered.
func (s *Session) IsComplete() bool { return s.state == StateComplete }

// Evaluation is set once the session completes.
func (s *Session) Evaluation() *Evaluation { return s.evaluation }

// Err is the last error recorded by a transition.
func (s *Session) Err() error { return s.err }

// InputKind tells the presentation layer which widget to show.
type InputKind string

const (
	InputText   InputKind = "text"
	InputChoice InputKind = "choice"
	InputScale  InputKind = "scale"
)

// Prompt is the rendering of the pending slot.
type Prompt struct {
	Step     int
	Total    int
	Focus    string
	Type     SlotType
	Kind     InputKind
	Question string
	Options  []string
	Min      int
	Max      int
	Default  int
}

// CurrentPrompt describes the pending question. ok is false when no question is pending.
func (s *Session) CurrentPrompt() (Prompt, bool) {
	if s.state != StateInProgress || s.step < 1 || s.step > len(s.plan) {
		return Prompt{}, false
	}

	slot := s.plan[s.step-1]
	prompt := Prompt{
		Step:     s.step,
		Total:    len(s.plan),
		Focus:    slot.Focus,
		Type:     slot.Type,
		Kind:     InputText,
		Question: slot.Question,
	}

	switch slot.Type {
	case SlotMCQ:
		if question, options := splitOptions(slot.Question); len(options) > 0 {
			prompt.Kind = InputChoice
			prompt.Question = question
			prompt.Options = options
		}
	case SlotScale:
		prompt.Kind = InputScale
		prompt.Min, prompt.Max, prompt.Default = ScaleMin, ScaleMax, ScaleDefault
	}

	return prompt, true
}

var optionPrefixes = []string{"A)", "B)", "C)", "D)"}

// splitOptions separates "A) ..." style option lines from the question text.
func splitOptions(question string) (string, []string) {
	var text []string
	var options []string

	for _, line := range strings.Split(question, "\n") {
		trimmed := strings.TrimSpace(line)
		if isOptionLine(trimmed) {
			if label := strings.TrimSpace(trimmed[2:]); label != "" {
				options = append(options, label)
			}
			continue
		}
		if trimmed != "" {
			text = append(text, trimmed)
		}
	}

	return strings.Join(text, "\n"), options
}

func isOptionLine(line string) bool {
	for _, prefix := range optionPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Normalize validates a raw answer against the prompt and returns the value to store.
func (p Prompt) Normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrEmptyAnswer
	}

	switch p.Kind {
	case InputScale:
		n, err := strconv.Atoi(value)
		if err != nil || n < p.Min || n > p.Max {
			return "", fmt.Errorf("%w: expected an integer between %d and %d, got %q", ErrInvalidAnswer, p.Min, p.Max, value)
		}
		return strconv.Itoa(n), nil
	case InputChoice:
		for i, option := range p.Options {
			if strings.EqualFold(value, option) {
				return option, nil
			}
			// a bare option letter is accepted too
			if i < len(optionPrefixes) && strings.EqualFold(value, optionPrefixes[i][:1]) {
				return option, nil
			}
		}
		return "", fmt.Errorf("%w: %q is not one of the options", ErrInvalidAnswer, value)
	default:
		return value, nil
	}
}
