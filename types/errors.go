package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrInconsistentTopology = errors.New("inconsistent topology")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrIO                   = errors.New("i/o error")
)

// Stage names used in run diagnostics
const (
	StageResolve = "resolve"
	StageTask    = "task"
	StageEC      = "ec"
	StageSMC     = "smc"
	StageField   = "field"
	StageSummary = "summary"
)

// NoLabel marks a StageError that is not tied to a single branch
const NoLabel = -1

// StageError attaches the failing stage and branch label to a fatal error.
type StageError struct {
	Stage string
	Label int
	Err   error
}

func NewStageError(stage string, label int, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Label: label, Err: err}
}

func (e *StageError) Error() string {
	if e.Label == NoLabel {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s, branch label %d: %v", e.Stage, e.Label, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IOError wraps an underlying file error into the ErrIO class.
func IOError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(ErrIO, "%s: %v", fmt.Sprintf(format, args...), err)
}
