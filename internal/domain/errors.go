package domain

import "errors"

// Errors that callers are expected to branch on with errors.Is.
// Retrieval failures are deliberately absent: they are absorbed by the
// orchestrator and never reach the caller.
var (
	// ErrEmptyQuestion indicates the question was empty or whitespace.
	// Rejected before any external call is made.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrMissingCredential indicates a required API key was not found
	// in the environment at construction time.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrAuthFailed indicates the generation backend rejected the
	// configured credential. A configuration problem, not a transient
	// failure.
	ErrAuthFailed = errors.New("generation backend authentication failed")

	// ErrNoCompletion indicates the generation backend answered the
	// request but produced no usable completion.
	ErrNoCompletion = errors.New("no completion produced")
)
