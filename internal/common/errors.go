// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("not found")

// InsufficientDataError indicates that mandatory input data is missing:
// a T12 statement, or a rent roll with no occupied units to impute from.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// NegativeEGIError indicates the computed effective gross income fell below
// zero, which signals malformed upstream extraction rather than a bad rule.
type NegativeEGIError struct {
	EGI float64
}

func (e *NegativeEGIError) Error() string {
	return fmt.Sprintf("effective gross income is negative (%.2f); input data is malformed", e.EGI)
}

// UnreconcilableRatioError indicates the minimum expense ratio could not be
// reached by policy-permitted scaling. The run must be reviewed manually,
// never silently over-scaled.
type UnreconcilableRatioError struct {
	Required   float64
	Achievable float64
}

func (e *UnreconcilableRatioError) Error() string {
	return fmt.Sprintf("expense ratio floor %.1f%% unreachable: best achievable is %.1f%% at maximum permitted scaling",
		e.Required*100, e.Achievable*100)
}

// InvalidPolicyError indicates a PolicyTable invariant was violated. It is
// raised once at table construction, never mid-run.
type InvalidPolicyError struct {
	Field  string
	Reason string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid policy: %s: %s", e.Field, e.Reason)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
