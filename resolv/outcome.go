package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import "errors"

// OutcomeKind tells what is known about an address' hostname.
type OutcomeKind uint8

const (
	// Unresolved means no resolution has been attempted yet. It is the zero
	// value and never stored in an AddressCache.
	Unresolved OutcomeKind = iota
	// Negative means resolution was attempted and failed.
	Negative
	// Positive means a hostname is known.
	Positive
)

func (k OutcomeKind) String() string {
	switch k {
	case Negative:
		return "negative"
	case Positive:
		return "positive"
	}
	return "unresolved"
}

// Outcome is the result of a resolution attempt for a single address.
type Outcome struct {
	Kind     OutcomeKind
	Hostname string
}

// PositiveOutcome returns an Outcome carrying the given hostname.
func PositiveOutcome(hostname string) Outcome {
	return Outcome{Kind: Positive, Hostname: hostname}
}

// NegativeOutcome returns an Outcome recording a failed resolution.
func NegativeOutcome() Outcome {
	return Outcome{Kind: Negative}
}

// OutcomeFromHostname maps the legacy empty-string convention onto an
// Outcome: an empty hostname is a negative result.
func OutcomeFromHostname(hostname string) Outcome {
	if hostname == "" {
		return NegativeOutcome()
	}
	return PositiveOutcome(hostname)
}

var (
	// ErrNotHandled is returned for addresses that are never resolved, such
	// as the unspecified address. Callers should display no hostname.
	ErrNotHandled = errors.New("address not handled")
	// ErrNotFound is returned when neither the cache nor the resolver could
	// provide a hostname. Callers should display the raw address.
	ErrNotFound = errors.New("hostname not found")
	// ErrNotResolvable is the normalized failure of a Resolver.
	ErrNotResolvable = errors.New("could not resolve address")
)
