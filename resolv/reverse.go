package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/DCSO/rdnscache/types"
)

const (
	suffixV4 = ".in-addr.arpa"
	suffixV6 = ".ip6.arpa"
)

// ErrNotReverseName is returned for names outside in-addr.arpa and
// ip6.arpa, or with the wrong number of labels.
var ErrNotReverseName = errors.New("not a reverse lookup name")

// AddressFromReverseName parses a full PTR owner name such as
// "1.0.0.10.in-addr.arpa" back into the address it refers to. Partial
// (zone) names are rejected.
//
// Like types.AddressFromIP, an ip6.arpa name for an IPv4-mapped address
// yields an IPv4 address.
func AddressFromReverseName(name string) (types.Address, error) {
	name = strings.ToLower(strings.TrimRight(name, "."))
	switch {
	case strings.HasSuffix(name, suffixV4):
		labels := strings.Split(strings.TrimSuffix(name, suffixV4), ".")
		if len(labels) != 4 {
			return types.Address{}, ErrNotReverseName
		}
		b := make([]byte, 4)
		for i, l := range labels {
			v, err := strconv.ParseUint(l, 10, 8)
			if err != nil {
				return types.Address{}, ErrNotReverseName
			}
			b[3-i] = byte(v)
		}
		return types.Address{Family: types.FamilyIPv4, Bytes: b}, nil
	case strings.HasSuffix(name, suffixV6):
		labels := strings.Split(strings.TrimSuffix(name, suffixV6), ".")
		if len(labels) != 32 {
			return types.Address{}, ErrNotReverseName
		}
		b := make([]byte, 16)
		for i, l := range labels {
			if len(l) != 1 {
				return types.Address{}, ErrNotReverseName
			}
			v, err := strconv.ParseUint(l, 16, 8)
			if err != nil {
				return types.Address{}, ErrNotReverseName
			}
			// labels run from the lowest nibble upwards
			pos := 31 - i
			if pos%2 == 0 {
				b[pos/2] |= byte(v) << 4
			} else {
				b[pos/2] |= byte(v)
			}
		}
		// IPv4-mapped names end up as IPv4, like addresses taken from events
		return types.AddressFromIP(net.IP(b)), nil
	}
	return types.Address{}, ErrNotReverseName
}
