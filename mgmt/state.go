package mgmt

// DCSO rdnscache
// Copyright (c) 2021, 2026, DCSO GmbH

import "github.com/DCSO/rdnscache/resolv"

// State contains references to components to be affected by RPC calls.
type State struct {
	Cache        *resolv.AddressCache
	Orchestrator *resolv.Orchestrator
	Toggle       *resolv.Toggle
}
