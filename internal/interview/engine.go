package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/logger"
	"go.uber.org/zap"
)

// EvaluationStore persists completed interviews. Writes are append-only.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, evaluation *Evaluation) (int64, error)
}

// Notifier is told about every persisted evaluation.
type Notifier interface {
	EvaluationCreated(ctx context.Context, evaluation *Evaluation) error
}

// EngineDeps are the collaborators of an Engine. Notifier and Logger are optional.
type EngineDeps struct {
	Planner     *Planner
	Compiler    *Compiler
	Judge       *Judge
	Evaluations EvaluationStore
	Notifier    Notifier
	Logger      *zap.Logger
}

// Engine applies user actions to sessions. It holds no per-session state,
// so one Engine can drive any number of sessions sequentially.
type Engine struct {
	planner     *Planner
	compiler    *Compiler
	judge       *Judge
	evaluations EvaluationStore
	notifier    Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewEngine(deps EngineDeps) *Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		planner:     deps.Planner,
		compiler:    deps.Compiler,
		judge:       deps.Judge,
		evaluations: deps.Evaluations,
		notifier:    deps.Notifier,
		logger:      log,
		now:         time.Now,
	}
}

func (e *Engine) sessionLogger(s *Session) *zap.Logger {
	return logger.WithSession(e.logger, s.id, s.role.ID)
}

func transitionError(action string, s *Session) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, s.state)
}

// Start binds a copy of the role to the session. Later edits of the role do
// not affect the running interview.
func (e *Engine) Start(s *Session, role RoleProfile) error {
	if s.state != StateNotStarted {
		return transitionError("start", s)
	}

	role.Normalize()
	if err := role.Validate(); err != nil {
		return err
	}

	s.role = role
	s.state = StateAwaitingCandidate
	s.err = nil

	e.sessionLogger(s).Info("interview started",
		zap.String("role", role.DisplayName()),
		zap.Int("questions", role.NumQuestions),
	)
	return nil
}

// SubmitCandidate captures the pre-screen and prepares the questions.
// If preparation fails the candidate is kept and Prepare can be retried.
func (e *Engine) SubmitCandidate(ctx context.Context, s *Session, c Candidate) error {
	if s.state != StateAwaitingCandidate {
		return transitionError("submit candidate", s)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Tools = strings.TrimSpace(c.Tools)
	if err := c.Validate(); err != nil {
		return err
	}

	s.candidate = c
	s.state = StateInProgress
	s.step = 0

	return e.Prepare(ctx, s)
}

// Prepare builds and compiles the plan once per session, then posts the
// intro and moves to the first question.
func (e *Engine) Prepare(ctx context.Context, s *Session) error {
	if s.state != StateInProgress {
		return transitionError("prepare", s)
	}
	if s.step != 0 {
		return nil
	}

	log := e.sessionLogger(s)

	skeleton, err := e.planner.Generate(ctx, s.role, s.role.NumQuestions, false)
	if err != nil {
		s.err = err
		return err
	}

	plan, err := e.compiler.Compile(ctx, skeleton, s.role, Answers{})
	if err != nil {
		s.err = err
		log.Warn("compiling questions failed", zap.Error(err))
		return err
	}

	s.plan = plan
	s.transcript = append(s.transcript, ai.Assistant(introMessage))
	s.step = 1
	s.err = nil

	log.Info("questions prepared", zap.Int("slots", len(plan)))
	return nil
}

// SubmitAnswer records the answer to the pending question. The last answer
// completes the session: it is scored, persisted once and the session moves
// to step N+1 even when scoring or persistence fails. Those failures are
// recorded on the session and returned.
func (e *Engine) SubmitAnswer(ctx context.Context, s *Session, raw string) error {
	prompt, ok := s.CurrentPrompt()
	if !ok {
		return transitionError("answer", s)
	}

	value, err := prompt.Normalize(raw)
	if err != nil {
		return err
	}

	slot := s.plan[s.step-1]
	s.transcript = append(s.transcript, ai.Assistant(slot.Question), ai.User(value))
	s.answers[slot.Focus] = value

	e.sessionLogger(s).Debug("answer accepted",
		zap.Int("step", s.step),
		zap.Int("total", len(s.plan)),
		zap.String("focus", slot.Focus),
	)

	if s.step < len(s.plan) {
		s.step++
		return nil
	}

	return e.complete(ctx, s)
}

func (e *Engine) complete(ctx context.Context, s *Session) error {
	log := e.sessionLogger(s)

	s.transcript = append(s.transcript, ai.Assistant(completionMessage))
	s.step = len(s.plan) + 1
	s.state = StateComplete

	var errs []error

	judgement, err := e.judge.Evaluate(ctx, s.answers.Clone())
	if err != nil {
		log.Error("scoring answers failed, storing fallback scores", zap.Error(err))
		errs = append(errs, err)
	}

	evaluation := &Evaluation{
		RoleID:    s.role.ID,
		Candidate: s.candidate,
		Answers:   s.answers.Clone(),
		Judgement: judgement,
		CreatedAt: e.now().UTC(),
	}
	s.evaluation = evaluation

	if e.evaluations != nil {
		id, err := e.evaluations.SaveEvaluation(ctx, evaluation)
		if err != nil {
			log.Error("saving evaluation failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("saving evaluation: %w", err))
		} else {
			evaluation.ID = id
			e.notify(ctx, log, evaluation)
		}
	}

	log.Info("interview completed",
		zap.Int64("evaluation_id", evaluation.ID),
		zap.Int("total_score", evaluation.Total()),
	)

	if len(errs) > 0 {
		s.err = errors.Join(errs...)
		return fmt.Errorf("completing interview: %w", s.err)
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, log *zap.Logger, evaluation *Evaluation) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.EvaluationCreated(ctx, evaluation); err != nil {
		log.Warn("publishing evaluation event failed", zap.Int64("evaluation_id", evaluation.ID), zap.Error(err))
	}
}

// CurrentPrompt is a convenience for s.CurrentPrompt.
func (e *Engine) CurrentPrompt(s *Session) (Prompt, bool) {
	return s.CurrentPrompt()
}

// Acknowledge closes a completed session and readies it for the next interview.
func (e *Engine) Acknowledge(s *Session) error {
	if s.state != StateComplete {
		return transitionError("acknowledge", s)
	}
	e.sessionLogger(s).Debug("completion acknowledged")
	s.clear()
	return nil
}

// Reset abandons the session at any point without persisting anything.
func (e *Engine) Reset(s *Session) {
	if s.state != StateNotStarted {
		e.sessionLogger(s).Info("interview abandoned", zap.String("state", s.state.String()), zap.Int("step", s.step))
	}
	s.clear()
}
