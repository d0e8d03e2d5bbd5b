package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidReference is matched by every malformed-reference failure.
var ErrInvalidReference = errors.New("invalid content reference")

// InvalidReferenceError describes why a reference or URL could not be used.
type InvalidReferenceError struct {
	Reason string
	Input  string
}

func (e *InvalidReferenceError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid content reference: %s", e.Reason)
	}
	return fmt.Sprintf("invalid content reference %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidReference) match.
func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// Attempt records one failed acquisition strategy.
type Attempt struct {
	Strategy string `json:"strategy"`
	Err      error  `json:"-"`
}

// Reason returns the attempt's error text.
func (a Attempt) Reason() string {
	if a.Err == nil {
		return "no content"
	}
	return a.Err.Error()
}

// AcquisitionError is returned when every strategy of an adapter failed.
type AcquisitionError struct {
	Source   SourceKind
	Attempts []Attempt
}

func (e *AcquisitionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Strategy, a.Reason()))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("could not acquire %s content", e.Source)
	}
	return fmt.Sprintf("could not acquire %s content (%s)", e.Source, strings.Join(parts, "; "))
}

// Strategies returns the attempted strategy names in order.
func (e *AcquisitionError) Strategies() []string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Strategy
	}
	return names
}

// Unwrap exposes the individual attempt errors to errors.Is/As.
func (e *AcquisitionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// EmptyContentError is returned when normalized text is below the minimum length.
type EmptyContentError struct {
	Length int
	Min    int
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("not enough content to analyze: %d characters, need at least %d", e.Length, e.Min)
}

// AnalysisServiceError wraps a failed completion call.
type AnalysisServiceError struct {
	Cause error
}

func (e *AnalysisServiceError) Error() string {
	if e.Cause == nil {
		return "analysis service failed"
	}
	return "analysis service failed: " + e.Cause.Error()
}

func (e *AnalysisServiceError) Unwrap() error { return e.Cause }

// Stage names used by StageError.
const (
	StageValidate  = "validate"
	StageAcquire   = "acquire"
	StageNormalize = "normalize"
	StageAnalyze   = "analyze"
)

// StageError adds pipeline stage and source kind context to a failure.
type StageError struct {
	Stage  string
	Source SourceKind
	Err    error
}

func (e *StageError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// HTTPStatus maps an error from the pipeline to an HTTP status code.
func HTTPStatus(err error) int {
	var (
		acq   *AcquisitionError
		empty *EmptyContentError
		svc   *AnalysisServiceError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	case errors.As(err, &empty):
		return http.StatusUnprocessableEntity
	case errors.As(err, &acq):
		return http.StatusBadGateway
	case errors.As(err, &svc):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
