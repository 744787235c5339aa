// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package container

import "go.e43.eu/container/internal/errors"

// Sentinel errors, for use with errors.Is
var (
	ErrRange             = errors.ErrRange
	ErrDecode            = errors.ErrDecode
	ErrTruncated         = errors.ErrTruncated
	ErrTypeMismatch      = errors.ErrTypeMismatch
	ErrUnsupportedFormat = errors.ErrUnsupportedFormat
	ErrIndexOutOfRange   = errors.ErrIndexOutOfRange
	ErrNotPointer        = errors.ErrNotPointer
	ErrInvalidValue      = errors.ErrInvalidValue
)

type (
	RangeError             = errors.RangeError
	DecodeError            = errors.DecodeError
	TypeMismatchError      = errors.TypeMismatchError
	UnsupportedFormatError = errors.UnsupportedFormatError
	IndexError             = errors.IndexError
	FieldError             = errors.FieldError
	InvalidTypeError       = errors.InvalidTypeError
	InvalidTagForTypeError = errors.InvalidTagForTypeError
)
