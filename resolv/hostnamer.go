package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"context"

	"github.com/DCSO/rdnscache/types"
)

// HostNamer is an interface specifying a component that provides
// cached hostnames for addresses.
type HostNamer interface {
	Resolve(ctx context.Context, addr types.Address) (string, error)
}

// HostCache is an interface specifying a component that accepts hostnames
// learned without active resolution.
type HostCache interface {
	Insert(addr types.Address, hostname string) bool
}

var (
	_ HostNamer = (*Orchestrator)(nil)
	_ HostCache = (*AddressCache)(nil)
)
