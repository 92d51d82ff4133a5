package errors

import (
	// Go Internal Packages
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for transport-level mapping.
type Kind int

const (
	Other Kind = iota
	Invalid
	NotFound
	Unauthorized
	Conflict
	Unprocessable
	Unavailable
	Internal
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case Unprocessable:
		return "unprocessable"
	case Unavailable:
		return "unavailable"
	case Internal:
		return "internal"
	}
	return "other"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and a message.
func E(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, unwrapping as needed. Unclassified
// errors report Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(kind Kind, err error) bool {
	return KindOf(err) == kind
}

// ValidationErrors collects per-field validation failures.
type ValidationErrors struct {
	fields map[string]string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string]string)}
}

func (v *ValidationErrors) Add(field, message string) {
	v.fields[field] = message
}

// Err returns nil when no failures were recorded, otherwise a single
// error listing every field in stable order.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, v.fields[k]))
	}
	return E(Invalid, strings.Join(parts, "; "), nil)
}
