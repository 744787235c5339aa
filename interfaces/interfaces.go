// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package cinterfaces defines the primary interfaces shared between the container
// packages
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages without import cycles)
package cinterfaces

// interface Parent is implemented by anything which may own values: the top level
// Container and the composite (container/array) values.
//
// A value holds its parent as a plain, non-owning reference. The parent is
// notified through Invalidate whenever the structure beneath it changes, so
// that any cached serialization can be dropped.
type Parent interface {
	// Invalidate marks any cached serialization of this parent (and of its own
	// parent, transitively) as stale
	Invalidate()
}

// interface Serializer is the interface implemented by objects which can produce
// the text wire format
type Serializer interface {
	// Serialize returns the text wire representation
	Serialize() string
}

// interface Deserializer is the interface implemented by objects which can be
// populated from the text wire format
type Deserializer interface {
	// Deserialize parses the text wire representation into the receiver
	Deserialize(s string) error
}
