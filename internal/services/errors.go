package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrProfileNotFound      = errors.New("profile not found")

	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")

	// ErrForbidden is returned when the acting user has no relation
	// to the entity that allows the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotOwner is returned by owner-only operations.
	ErrNotOwner = errors.New("only the owner can do this")

	ErrValidation = errors.New("validation failed")
	// ErrInvalidStatus is returned for a status outside the closed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTag is returned when a task references a tag the
	// acting user does not own.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrInvalidResponsible is returned when the responsible user is
	// unknown or, for project tasks, outside the project team.
	ErrInvalidResponsible = errors.New("invalid responsible user")
)

// ValidationError collects field level messages of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type validator struct {
	fields map[string]string
}

func (v *validator) check(ok bool, field, message string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
