package models

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a player or team lookup that matched nothing. When
// near-misses exist, Suggestions carries up to five candidate names.
type NotFoundError struct {
	Resource    string
	Query       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("no %s found matching '%s', did you mean: %s",
			e.Resource, e.Query, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("no %s found matching '%s'", e.Resource, e.Query)
}

// InvalidStateError reports an operation invoked before its prerequisites,
// such as querying an engine that has not been built.
type InvalidStateError struct {
	Operation string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// InsufficientDataError reports source data too thin to compute a result,
// such as an empty player table or zero seasons for a profile.
type InsufficientDataError struct {
	Operation string
	Reason    string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var id *InsufficientDataError
	return errors.As(err, &id)
}
