package kobo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors. Use errors.Is to test for them; APIError and StepError
// unwrap to the matching sentinel.
var (
	ErrMissingToken    = errors.New("KOBO_API_TOKEN is not set")
	ErrUnauthorized    = errors.New("authentication failed")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPollTimeout     = errors.New("poll budget exhausted")
	ErrExportFailed    = errors.New("export job failed")
	ErrImportFailed    = errors.New("import task failed")
)

// Kind classifies an error for callers that only need the category.
type Kind string

const (
	KindAuthentication  Kind = "authentication"
	KindNotFound        Kind = "not_found"
	KindTransport       Kind = "transport"
	KindPartialFailure  Kind = "partial_failure"
	KindTimeout         Kind = "timeout"
	KindInvalidArgument Kind = "invalid_argument"
)

// APIError is returned when the server answers with a non-2xx status.
type APIError struct {
	Status int
	Method string
	Path   string
	Detail string
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.Status)
	}
	return fmt.Sprintf("kobo api %s %s: %d: %s", e.Method, e.Path, e.Status, detail)
}

// Unwrap maps well-known statuses onto the sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// StepError reports which step of a multi-step operation failed. Steps are
// numbered from 1. When Step > 1 the earlier steps already took effect on the
// server and were not rolled back.
type StepError struct {
	Op        string
	Step      int
	Name      string
	Completed []string
	// Resource is the uid of the server-side object left behind, if any.
	Resource string
	Err      error
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: step %d (%s) failed", e.Op, e.Step, e.Name)
	if len(e.Completed) > 0 {
		fmt.Fprintf(&b, " after %s succeeded", strings.Join(e.Completed, ", "))
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, "; %s left in intermediate state", e.Resource)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StepError) Unwrap() error { return e.Err }

// Partial reports whether earlier steps succeeded before this one failed.
func (e *StepError) Partial() bool { return len(e.Completed) > 0 }

// KindOf classifies err. Timeouts and authentication failures win over the
// partial-failure classification since they tell the caller what to do next.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrUnauthorized):
		return KindAuthentication
	case errors.Is(err, ErrPollTimeout):
		return KindTimeout
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.Partial() {
		return KindPartialFailure
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	}
	return KindTransport
}

// steps tracks progress through a multi-step operation.
type steps struct {
	op       string
	done     []string
	resource string
}

func newSteps(op string) *steps { return &steps{op: op} }

func (s *steps) complete(name string) { s.done = append(s.done, name) }

func (s *steps) fail(name string, err error) error {
	completed := make([]string, len(s.done))
	copy(completed, s.done)
	return &StepError{
		Op:        s.op,
		Step:      len(s.done) + 1,
		Name:      name,
		Completed: completed,
		Resource:  s.resource,
		Err:       err,
	}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
