package interview

import "errors"

var (
	// ErrMalformedPlan means the model did not return a usable plan array.
	ErrMalformedPlan = errors.New("malformed interview plan")
	// ErrMalformedQuestionBatch means the compiled questions are unparsable
	// or do not match the plan's shape.
	ErrMalformedQuestionBatch = errors.New("malformed question batch")
	// ErrEmptyAnswer is returned for blank answers; the session does not advance.
	ErrEmptyAnswer = errors.New("answer must not be empty")
	// ErrInvalidAnswer is returned when an answer does not fit its slot type.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrInvalidTransition is returned when an action does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInvalidRole is returned when a role profile fails validation.
	ErrInvalidRole = errors.New("invalid role profile")
)
