package types

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"bytes"
	"errors"
	"net"
)

// AddrFamily discriminates between the address families an Address can
// belong to.
type AddrFamily uint8

const (
	// FamilyUnknown marks an Address that was not constructed from a valid IP.
	FamilyUnknown AddrFamily = iota
	// FamilyIPv4 marks a 4-byte IPv4 address.
	FamilyIPv4
	// FamilyIPv6 marks a 16-byte IPv6 address.
	FamilyIPv6
)

func (f AddrFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "inet"
	case FamilyIPv6:
		return "inet6"
	}
	return "unknown"
}

// ErrInvalidAddress is returned when a string cannot be parsed as an IP
// address.
var ErrInvalidAddress = errors.New("invalid IP address")

// Address is a network address in binary form, tagged with its family. Two
// Addresses are equal iff family and raw bytes match.
type Address struct {
	Family AddrFamily
	Bytes  []byte
}

// AddressFromIP converts a net.IP into an Address. IPv4-mapped IPv6 addresses
// are treated as IPv4. The returned Address owns a copy of the IP's bytes.
func AddressFromIP(ip net.IP) Address {
	if v4 := ip.To4(); v4 != nil {
		return Address{
			Family: FamilyIPv4,
			Bytes:  append([]byte(nil), v4...),
		}
	}
	if v6 := ip.To16(); v6 != nil {
		return Address{
			Family: FamilyIPv6,
			Bytes:  append([]byte(nil), v6...),
		}
	}
	return Address{}
}

// ParseAddress parses a textual IPv4 or IPv6 address.
func ParseAddress(s string) (Address, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return Address{}, ErrInvalidAddress
	}
	return AddressFromIP(ip), nil
}

// Len returns the declared byte length of the address.
func (a Address) Len() int {
	return len(a.Bytes)
}

// Equal returns true if both addresses have the same family and bytes.
func (a Address) Equal(b Address) bool {
	return a.Family == b.Family && bytes.Equal(a.Bytes, b.Bytes)
}

// IsUnspecified returns true for the all-zero address of any family, and for
// an empty Address.
func (a Address) IsUnspecified() bool {
	for _, b := range a.Bytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the address.
func (a Address) Clone() Address {
	return Address{
		Family: a.Family,
		Bytes:  append([]byte(nil), a.Bytes...),
	}
}

// IP returns the address as a net.IP.
func (a Address) IP() net.IP {
	return net.IP(append([]byte(nil), a.Bytes...))
}

func (a Address) String() string {
	if a.Family == FamilyUnknown || len(a.Bytes) == 0 {
		return "<invalid>"
	}
	return net.IP(a.Bytes).String()
}
