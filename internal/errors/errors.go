// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	"fmt"
	"reflect"
	"strings"

	cinterfaces "go.e43.eu/container/interfaces"
)

type xerror string

func (e xerror) Error() string {
	return string(e)
}

const (
	// Numeric value outside of the range representable by its declared type
	ErrRange = xerror("container: Value out of range for type")

	// Malformed input (text wire, binary, JSON or MessagePack)
	ErrDecode = xerror("container: Malformed input")

	// Input ended before a length prefixed field or a declared subtree was complete
	//
	// Every error matching ErrTruncated also matches ErrDecode
	ErrTruncated = xerror("container: Truncated input")

	// Narrowing accessor invoked on a null value
	ErrTypeMismatch = xerror("container: Type mismatch")

	// Format adapter asked to handle an unrecognised format
	ErrUnsupportedFormat = xerror("container: Unsupported format")

	// Index outside the bounds of an array or value list
	ErrIndexOutOfRange = xerror("container: Index out of range")

	// Unmarshal expected pointer parameter
	ErrNotPointer = xerror("container: Expected pointer parameter")

	// Invalid value for type
	ErrInvalidValue = xerror("container: Invalid value for type")
)

type InvalidTypeError struct {
	T reflect.Type
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("container: Type '%s' unsupported", e.T)
}

type InvalidTagForTypeError struct {
	T   reflect.Type
	Tag string
}

func (e InvalidTagForTypeError) Error() string {
	return fmt.Sprintf("container: Tag '%s' unsupported for type '%s'", e.Tag, e.T)
}

// RangeError is returned when constructing a numeric value which does not fit
// the declared width of its type
type RangeError struct {
	Type  cinterfaces.ValueType
	Value string
	Min   string
	Max   string
	// Suggested wider type
	Suggest cinterfaces.ValueType
}

func (err RangeError) Is(target error) bool {
	return target == ErrRange
}

func (err RangeError) Error() string {
	return fmt.Sprintf("%s: %s %s outside [%s, %s]; use %s for wider range",
		ErrRange, err.Type, err.Value, err.Min, err.Max, err.Suggest)
}

// DecodeError is returned for malformed input of any format
type DecodeError struct {
	// Format being decoded ("wire", "binary", "json", ...)
	Format string
	// Byte offset of the problem within the input, or -1 if unknown
	Offset int
	Reason string
	// Set when the input ended early
	Truncated bool
	// Underlying error, if any
	Err error
}

func (err DecodeError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return true
	case ErrTruncated:
		return err.Truncated
	default:
		return false
	}
}

func (err DecodeError) Unwrap() error {
	return err.Err
}

func (err DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("container: Malformed ")
	b.WriteString(err.Format)
	b.WriteString(" input")
	if err.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", err.Offset)
	}
	if err.Reason != "" {
		b.WriteString(": ")
		b.WriteString(err.Reason)
	}
	if err.Err != nil {
		b.WriteString(": ")
		b.WriteString(strings.TrimPrefix(err.Err.Error(), "container: "))
	}
	return b.String()
}

// Truncated constructs a DecodeError for input which ended early
func Truncated(format string, offset int, what string) error {
	return DecodeError{Format: format, Offset: offset, Reason: "truncated " + what, Truncated: true}
}

// Decode constructs a DecodeError
func Decode(format string, offset int, reason string, args ...interface{}) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return DecodeError{Format: format, Offset: offset, Reason: reason}
}

// TypeMismatchError is returned by narrowing accessors invoked on values which
// cannot be converted
type TypeMismatchError struct {
	Name string
	From cinterfaces.ValueType
	To   string
}

func (err TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (err TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s value '%s' to %s", ErrTypeMismatch, err.From, err.Name, err.To)
}

// UnsupportedFormatError is returned by the format adapters
type UnsupportedFormatError struct {
	Format string
}

func (err UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

func (err UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s '%s'", ErrUnsupportedFormat, err.Format)
}

// IndexError is returned when indexing outside of a sequence
type IndexError struct {
	Index, Len int
}

func (err IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

func (err IndexError) Error() string {
	return fmt.Sprintf("%s (%d not in [0, %d))", ErrIndexOutOfRange, err.Index, err.Len)
}

type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "container: ")
	return fmt.Sprintf("container: %s (at %s)", uerr, err.Path)
}

// WithFieldError annotates err with the path of the value or field at which
// it occurred. Nested annotations are joined outermost first.
func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	var combined string
	if parts[0] == "" {
		parts[0] = "<anonymous>"
	}

	switch len(parts) {
	case 1:
		combined = parts[0]
	default:
		combined = strings.Join(parts, ".")
	}

	switch err := err.(type) {
	case FieldError:
		err.Path = fmt.Sprintf("%s.%s", combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}
