package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidStatus     = errors.New("invalid request status")
	ErrRequestNotFound   = errors.New("selling request not found")
	ErrRequestClosed     = errors.New("selling request already decided")
	ErrNoIdentity        = errors.New("no current user")
	ErrWrongRole         = errors.New("current user has the wrong role")
	ErrNotRequestBuyer   = errors.New("request belongs to another buyer")
	ErrAlreadyRegistered = errors.New("user already registered")
)

// ValidationError carries one user-facing message per invalid form field
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
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it holds at least one message
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
