package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import "sync/atomic"

// Switch tells whether active resolution is currently enabled. It is
// consulted on every cache miss.
type Switch interface {
	Enabled() bool
}

// Toggle is a Switch that can be flipped at runtime, e.g. via the
// management API.
type Toggle struct {
	enabled atomic.Bool
}

// NewToggle returns a Toggle in the given state.
func NewToggle(enabled bool) *Toggle {
	t := &Toggle{}
	t.enabled.Store(enabled)
	return t
}

// Enabled implements Switch. A nil Toggle is disabled.
func (t *Toggle) Enabled() bool {
	return t != nil && t.enabled.Load()
}

// Set changes the state of the Toggle.
func (t *Toggle) Set(enabled bool) {
	t.enabled.Store(enabled)
}
