// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError carries enough context to tell the user what failed and
// what to try next: the operation that was attempted, the resource it
// touched, and remediation suggestions. Construct one through
// NewErrorContext.
type ActionableError struct {
	Operation   string
	Resource    string
	Suggestions []string
	Cause       error
}

func (e *ActionableError) Error() string {
	msg := "failed to " + e.Operation
	if e.Resource != "" {
		msg += ": " + e.Resource
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the error for display. Suggestions are listed as bullets
// under the message; verbose additionally prints the numbered cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • ")
			sb.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err.Error())
		}
	}

	return sb.String()
}

// ErrorContext builds an ActionableError field by field:
//
//	return issue.NewErrorContext().
//		WithOperation("load configuration").
//		WithResource(path).
//		WithSuggestion("Check the file contains valid CUE").
//		Wrap(err).
//		BuildError()
type ErrorContext struct {
	operation   string
	resource    string
	suggestions []string
	cause       error
}

func NewErrorContext() *ErrorContext { return &ErrorContext{} }

// WithOperation sets the verb phrase describing what was attempted.
// An operation is required; BuildError returns nil without one.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource names the file, package, or entity involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a remediation hint. May be called repeatedly.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap records the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// BuildError finishes the builder. It returns nil when no operation was
// set, so a context built from a nil error path stays nil.
func (c *ErrorContext) BuildError() error {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}
