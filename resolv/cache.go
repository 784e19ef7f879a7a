package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/DCSO/rdnscache/types"

	log "github.com/sirupsen/logrus"
)

// DefaultTableBits gives 2^9 = 512 buckets.
const DefaultTableBits = 9

// MaxTableBits limits the bucket array to 2^24 buckets.
const MaxTableBits = 24

type cacheEntry struct {
	addr    types.Address
	outcome Outcome
}

type bucket struct {
	sync.RWMutex
	// in insertion order, scanned from the back
	entries []*cacheEntry
}

// AddressCache is a reverse lookup cache mapping binary addresses to the
// outcome of resolving them. The number of buckets is fixed at construction.
// Entries are never removed or modified once inserted, so the cache grows
// with the number of distinct addresses seen.
type AddressCache struct {
	buckets []bucket
	mask    uint32
	count   int64
	Logger  *log.Entry
}

// NewAddressCache returns a new, empty AddressCache with 2^tableBits buckets.
// Values of tableBits outside (0, MaxTableBits] fall back to
// DefaultTableBits.
func NewAddressCache(tableBits uint) *AddressCache {
	if tableBits == 0 || tableBits > MaxTableBits {
		tableBits = DefaultTableBits
	}
	size := uint32(1) << tableBits
	return &AddressCache{
		buckets: make([]bucket, size),
		mask:    size - 1,
		Logger: log.WithFields(log.Fields{
			"domain": "resolv",
		}),
	}
}

func (c *AddressCache) bucketFor(addr types.Address) *bucket {
	h := fnv.New32()
	h.Write(addr.Bytes)
	return &c.buckets[h.Sum32()&c.mask]
}

// scan must be called with the bucket lock held.
func (b *bucket) scan(addr types.Address) *cacheEntry {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].addr.Equal(addr) {
			return b.entries[i]
		}
	}
	return nil
}

// Lookup returns the outcome stored for addr, if any.
func (c *AddressCache) Lookup(addr types.Address) (Outcome, bool) {
	b := c.bucketFor(addr)
	b.RLock()
	defer b.RUnlock()
	if e := b.scan(addr); e != nil {
		c.Logger.Debugf("cache search: found %s -> %q (%s)", addr, e.outcome.Hostname, e.outcome.Kind)
		return e.outcome, true
	}
	return Outcome{}, false
}

// InsertIfAbsent stores outcome for addr unless an entry for addr already
// exists, in which case the existing entry is left untouched. It returns
// true if a new entry was created.
func (c *AddressCache) InsertIfAbsent(addr types.Address, outcome Outcome) bool {
	if outcome.Kind == Unresolved {
		return false
	}
	b := c.bucketFor(addr)
	b.Lock()
	defer b.Unlock()
	if b.scan(addr) != nil {
		return false
	}
	b.entries = append(b.entries, &cacheEntry{
		addr:    addr.Clone(),
		outcome: outcome,
	})
	atomic.AddInt64(&c.count, 1)
	c.Logger.Debugf("cache insert: %s -> %q (%s)", addr, outcome.Hostname, outcome.Kind)
	return true
}

// Insert stores hostname for addr unless addr is already cached. An empty
// hostname is stored as a negative result. This is the entry point for
// components that learn hostnames without resolving them, e.g. from observed
// DNS traffic.
func (c *AddressCache) Insert(addr types.Address, hostname string) bool {
	return c.InsertIfAbsent(addr, OutcomeFromHostname(hostname))
}

// Len returns the number of cached addresses.
func (c *AddressCache) Len() int {
	return int(atomic.LoadInt64(&c.count))
}

// Buckets returns the fixed number of buckets.
func (c *AddressCache) Buckets() int {
	return len(c.buckets)
}
