// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by the pipeline stages.
var (
	// ErrUnsupportedFormat indicates no converter handles the file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyArtifact indicates a stage produced no bytes.
	ErrEmptyArtifact = errors.New("empty intermediate artifact")

	// ErrEngineMissing indicates a required external engine was not found.
	ErrEngineMissing = errors.New("engine not available")
)

// ErrorKind classifies a per-job failure.
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	KindConverterFailure  ErrorKind = "ConverterFailure"
	KindEmptyArtifact     ErrorKind = "EmptyArtifact"
	KindSubprocessFailure ErrorKind = "SubprocessFailure"
	KindIOFailure         ErrorKind = "IOFailure"
	KindCanceled          ErrorKind = "Canceled"
)

// JobError is the failure half of a ConversionResult.
type JobError struct {
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	Op         string    `json:"op,omitempty" yaml:"op,omitempty"`
	SourcePath string    `json:"source" yaml:"source"`
	Message    string    `json:"message" yaml:"message"`
	Err        error     `json:"-" yaml:"-"`
}

// NewJobError wraps err as a failure of the given kind for sourcePath.
func NewJobError(kind ErrorKind, op, sourcePath string, err error) *JobError {
	return &JobError{
		Kind:       kind,
		Op:         op,
		SourcePath: sourcePath,
		Message:    err.Error(),
		Err:        err,
	}
}

func (e *JobError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Kind, e.Op, e.SourcePath, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.SourcePath, e.Message)
}

func (e *JobError) Unwrap() error { return e.Err }

// SubprocessError reports a non-zero exit from an external engine. Stderr
// holds the engine's diagnostic output.
type SubprocessError struct {
	Engine string
	Stderr string
	Err    error
}

func (e *SubprocessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Engine, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Engine, e.Err)
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// KindOf classifies err by the sentinel or typed error it wraps. It returns
// "" when err carries no classification.
func KindOf(err error) ErrorKind {
	var je *JobError
	var se *SubprocessError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &je):
		return je.Kind
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrEmptyArtifact):
		return KindEmptyArtifact
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &se):
		return KindSubprocessFailure
	}
	return ""
}
