package errs

import "fmt"

type InvalidInputError struct {
	Msg string
}

func (t InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %v", t.Msg)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (t NotFoundError) Error() string {
	return fmt.Sprintf("%v %v not found", t.Entity, t.ID)
}

type UnauthorizedError struct{}

func (t UnauthorizedError) Error() string {
	return "unauthorized"
}

type RateLimitedError struct {
	RetryAfterSeconds int
}

func (t RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %vs", t.RetryAfterSeconds)
}

// UpstreamError wraps a collaborator failure. The wrapped error is logged
// server-side only, callers get a generic message.
type UpstreamError struct {
	Collaborator string
	Err          error
}

func (t UpstreamError) Error() string {
	return fmt.Sprintf("upstream %v failed: %v", t.Collaborator, t.Err)
}

func (t UpstreamError) Unwrap() error {
	return t.Err
}

// PreconditionError marks a missing prerequisite of an otherwise valid
// request, e.g. no stored artifacts at deploy time.
type PreconditionError struct {
	Msg string
}

func (t PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %v", t.Msg)
}
