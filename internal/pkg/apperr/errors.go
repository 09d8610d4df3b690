// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a *ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required returns a ValidationError listing every missing field.
func Required(fields ...string) error {
	return &ValidationError{Message: "missing required fields: " + strings.Join(fields, ", ")}
}

// NotFoundError reports that a referenced record does not exist for the given keys.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// InvalidDateError reports an input that could not be read as a calendar day.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Input)
}

// MalformedPlanError carries AI output that could not be repaired into a plan.
// Raw is kept verbatim for operator diagnosis.
type MalformedPlanError struct {
	Raw        string
	ArchiveKey string
	Cause      error
}

func (e *MalformedPlanError) Error() string {
	msg := "malformed roadmap plan"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.ArchiveKey != "" {
		msg += " (raw output archived at " + e.ArchiveKey + ")"
	}
	return msg
}

func (e *MalformedPlanError) Unwrap() error { return e.Cause }

func IsValidation(err error) bool {
	var v *ValidationError
	var d *InvalidDateError
	return errors.As(err, &v) || errors.As(err, &d)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsMalformedPlan(err error) bool {
	var mp *MalformedPlanError
	return errors.As(err, &mp)
}
