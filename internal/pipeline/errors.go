package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so the API layer can pick a status code
// without inspecting error strings.
type Kind int

const (
	// KindStorage covers workspace and artifact I/O failures.
	KindStorage Kind = iota
	// KindCollaborator covers failures of external services (LLM, TTS,
	// stock footage provider, encoder, uploader).
	KindCollaborator
	// KindNoFootage means every search term was exhausted without a single
	// usable clip. The request is well-formed but cannot be satisfied.
	KindNoFootage
)

// Error wraps a stage failure with its classification and the stage name.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func storageErr(stage string, err error) error {
	return &Error{Kind: KindStorage, Stage: stage, Err: err}
}

func collaboratorErr(stage string, err error) error {
	return &Error{Kind: KindCollaborator, Stage: stage, Err: err}
}

// ErrNoFootage is returned when no stock clip could be found for any
// search term.
var ErrNoFootage = errors.New("no usable stock footage found for any search term")

// KindOf returns the classification of err, defaulting to KindCollaborator
// for unwrapped errors that escape a stage.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, ErrNoFootage) {
		return KindNoFootage
	}
	return KindCollaborator
}
