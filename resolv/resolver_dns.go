package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/DCSO/rdnscache/types"

	"github.com/miekg/dns"
)

// DefaultDNSTimeout is used by DNSResolver if no timeout is given.
const DefaultDNSTimeout = 2 * time.Second

// DNSResolver sends PTR queries directly to a given DNS server instead of
// going through the system resolver.
type DNSResolver struct {
	Server  string
	Timeout time.Duration
}

// NewDNSResolver returns a DNSResolver querying server, given as host:port.
// A missing port defaults to 53.
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(strings.Trim(server, "[]"), "53")
	}
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	return &DNSResolver{
		Server:  server,
		Timeout: timeout,
	}
}

func (r *DNSResolver) exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	c := &dns.Client{Net: "udp", Timeout: r.Timeout}
	resp, _, err := c.ExchangeContext(ctx, m, r.Server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		cTCP := &dns.Client{Net: "tcp", Timeout: r.Timeout}
		resp, _, err = cTCP.ExchangeContext(ctx, m, r.Server)
	}
	return resp, err
}

// LookupHostname implements Resolver.
func (r *DNSResolver) LookupHostname(ctx context.Context, addr types.Address) (string, error) {
	rev, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotResolvable, addr, err)
	}
	m := new(dns.Msg)
	m.SetQuestion(rev, dns.TypePTR)
	m.RecursionDesired = true

	resp, err := r.exchange(ctx, m)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotResolvable, addr, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("%w: %s: %s", ErrNotResolvable, addr, dns.RcodeToString[resp.Rcode])
	}
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			name := strings.TrimRight(ptr.Ptr, ".")
			if name != "" {
				return name, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s: no PTR record", ErrNotResolvable, addr)
}
