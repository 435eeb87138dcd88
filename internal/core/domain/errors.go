package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidURL indicates user input could not be turned into a website URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrAnalysisFailed indicates the site analysis flow could not complete.
	// No conversation is persisted when this is returned.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrPersist indicates a conversation write failed part way through a flow.
	ErrPersist = errors.New("persist failed")

	// ErrGatewayTimeout indicates the LLM gateway did not answer in time.
	ErrGatewayTimeout = errors.New("gateway timeout")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNotConfigured indicates a feature needs configuration that is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrRateLimited indicates the LLM provider rejected a call for exceeding its quota.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates the operation needs a logged-in user.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the session token has expired.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the session token is malformed or badly signed.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// InvalidURLError reports input rejected by URL intake.
type InvalidURLError struct {
	Input  string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// Is matches ErrInvalidURL and ErrInvalidInput.
func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidURL || target == ErrInvalidInput
}

// AnalysisFailedError reports a gateway or store failure during site analysis.
type AnalysisFailedError struct {
	URL string
	Err error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.URL, e.Err)
}

// Is matches ErrAnalysisFailed.
func (e *AnalysisFailedError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

func (e *AnalysisFailedError) Unwrap() error {
	return e.Err
}

// PersistStep names the write of a flow that failed.
type PersistStep string

// Steps that can report a PersistError.
const (
	// PersistStepUser is the write that records the user's message.
	PersistStepUser PersistStep = "user"

	// PersistStepAssistant covers the reply generation and the write that records it.
	PersistStepAssistant PersistStep = "assistant"

	// PersistStepRefresh is the combined analysis and message write of a refresh.
	PersistStepRefresh PersistStep = "refresh"
)

// PersistError reports a failure in one step of a conversation write sequence.
// Writes completed before the failing step remain in the store.
type PersistError struct {
	ConversationID string
	Step           PersistStep
	Err            error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("conversation %s: %s step failed: %v", e.ConversationID, e.Step, e.Err)
}

// Is matches ErrPersist.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// GatewayTimeoutError reports an LLM call that exceeded its deadline.
type GatewayTimeoutError struct {
	Timeout time.Duration
}

func (e *GatewayTimeoutError) Error() string {
	if e.Timeout <= 0 {
		return "LLM gateway timed out"
	}
	return fmt.Sprintf("LLM gateway timed out after %s", e.Timeout)
}

// Is matches ErrGatewayTimeout and context.DeadlineExceeded.
func (e *GatewayTimeoutError) Is(target error) bool {
	return target == ErrGatewayTimeout || target == context.DeadlineExceeded
}

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConversationNotFound builds the NotFoundError for a conversation id.
func ConversationNotFound(id string) error {
	return &NotFoundError{Kind: "conversation", ID: id}
}
