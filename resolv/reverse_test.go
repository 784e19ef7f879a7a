package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"testing"

	"github.com/DCSO/rdnscache/types"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromReverseName(t *testing.T) {
	for _, ip := range []string{"10.0.0.1", "192.168.178.254", "2001:db8::1", "fe80::dead:beef"} {
		rev, err := dns.ReverseAddr(ip)
		require.NoError(t, err)
		a, err := AddressFromReverseName(rev)
		require.NoError(t, err, rev)
		assert.True(t, a.Equal(mustAddr(t, ip)), "%s != %s", a, ip)
	}
}

func TestAddressFromReverseNameInvalid(t *testing.T) {
	for _, name := range []string{
		"example.com",
		"0.10.in-addr.arpa",
		"300.0.0.10.in-addr.arpa.",
		"1.0.ip6.arpa",
		"x.0.0.10.in-addr.arpa",
	} {
		_, err := AddressFromReverseName(name)
		assert.ErrorIs(t, err, ErrNotReverseName, name)
	}
}

func TestAddressFromReverseNameMappedV4(t *testing.T) {
	rev, err := dns.ReverseAddr("::ffff:10.0.0.1")
	require.NoError(t, err)
	// ReverseAddr writes IPv4-mapped addresses as in-addr.arpa
	require.Equal(t, "1.0.0.10.in-addr.arpa.", rev)

	rev = "1.0.0.0.0.0.a.0.f.f.f.f.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.ip6.arpa."
	a, err := AddressFromReverseName(rev)
	require.NoError(t, err)
	event, err := types.ParseAddress("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, types.FamilyIPv4, a.Family)
	assert.True(t, a.Equal(event), "%s != %s", a, event)
}
