package resolv

// DCSO rdnscache
// Copyright (c) 2019, 2020, 2026, DCSO GmbH

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/DCSO/rdnscache/types"
)

// Resolver looks up the hostname of a single address. Implementations must
// report every failure as an error wrapping ErrNotResolvable.
type Resolver interface {
	LookupHostname(ctx context.Context, addr types.Address) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, addr types.Address) (string, error)

// LookupHostname implements Resolver.
func (f ResolverFunc) LookupHostname(ctx context.Context, addr types.Address) (string, error) {
	return f(ctx, addr)
}

// SystemResolver resolves addresses via the operating system's resolver
// (net.Resolver.LookupAddr).
type SystemResolver struct {
	Resolver *net.Resolver
	Timeout  time.Duration
}

// NewSystemResolver returns a SystemResolver using net.DefaultResolver. A
// timeout of zero means no additional deadline.
func NewSystemResolver(timeout time.Duration) *SystemResolver {
	return &SystemResolver{
		Resolver: net.DefaultResolver,
		Timeout:  timeout,
	}
}

// LookupHostname implements Resolver. Only the first name returned is used.
func (r *SystemResolver) LookupHostname(ctx context.Context, addr types.Address) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	names, err := r.Resolver.LookupAddr(ctx, addr.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotResolvable, addr, err)
	}
	for _, name := range names {
		name = strings.TrimRight(name, ".")
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s: no names returned", ErrNotResolvable, addr)
}
