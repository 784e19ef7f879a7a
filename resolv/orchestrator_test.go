package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DCSO/rdnscache/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls int64
	names map[string]string
	delay time.Duration
}

func (r *countingResolver) LookupHostname(ctx context.Context, addr types.Address) (string, error) {
	atomic.AddInt64(&r.calls, 1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if name, ok := r.names[addr.String()]; ok {
		return name, nil
	}
	return "", ErrNotResolvable
}

func (r *countingResolver) Calls() int64 {
	return atomic.LoadInt64(&r.calls)
}

func makeTestOrchestrator(names map[string]string, enabled bool) (*Orchestrator, *countingResolver, *Toggle) {
	r := &countingResolver{names: names}
	tg := NewToggle(enabled)
	return MakeOrchestrator(NewAddressCache(DefaultTableBits), r, tg), r, tg
}

func TestResolvePositive(t *testing.T) {
	o, r, _ := makeTestOrchestrator(map[string]string{"10.0.0.1": "router.local"}, true)
	a := mustAddr(t, "10.0.0.1")

	name, err := o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "router.local", name)

	name, err = o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "router.local", name)
	assert.Equal(t, int64(1), r.Calls())

	out, ok := o.Lookup(a)
	assert.True(t, ok)
	assert.Equal(t, Positive, out.Kind)
	assert.Equal(t, uint64(1), o.PerfStats.Resolved)
	assert.Equal(t, uint64(1), o.PerfStats.CacheHits)
}

func TestResolveNegativeCached(t *testing.T) {
	o, r, _ := makeTestOrchestrator(nil, true)
	a := mustAddr(t, "10.0.0.99")

	_, err := o.Resolve(context.Background(), a)
	assert.ErrorIs(t, err, ErrNotFound)

	name, err := o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "", name)
	assert.Equal(t, int64(1), r.Calls())

	out, ok := o.Lookup(a)
	assert.True(t, ok)
	assert.Equal(t, Negative, out.Kind)
	assert.Equal(t, uint64(1), o.PerfStats.NegativeHits)
}

func TestResolveEmptyNameIsFailure(t *testing.T) {
	o, _, _ := makeTestOrchestrator(map[string]string{"10.0.0.5": ""}, true)
	a := mustAddr(t, "10.0.0.5")

	_, err := o.Resolve(context.Background(), a)
	assert.ErrorIs(t, err, ErrNotFound)
	out, ok := o.Lookup(a)
	assert.True(t, ok)
	assert.Equal(t, Negative, out.Kind)
}

func TestResolveDisabledDoesNotPollute(t *testing.T) {
	o, r, _ := makeTestOrchestrator(map[string]string{"10.0.0.1": "router.local"}, false)
	a := mustAddr(t, "10.0.0.1")

	_, err := o.Resolve(context.Background(), a)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), r.Calls())
	_, ok := o.Lookup(a)
	assert.False(t, ok)
	assert.Equal(t, 0, o.Cache.Len())

	// passive path fills in the entry later
	assert.True(t, o.Cache.Insert(a, "seen.in.traffic"))
	name, err := o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "seen.in.traffic", name)
}

func TestResolveSwitchPolledEveryCall(t *testing.T) {
	o, r, tg := makeTestOrchestrator(map[string]string{"10.0.0.1": "router.local"}, false)
	a := mustAddr(t, "10.0.0.1")

	_, err := o.Resolve(context.Background(), a)
	assert.ErrorIs(t, err, ErrNotFound)

	tg.Set(true)
	name, err := o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "router.local", name)
	assert.Equal(t, int64(1), r.Calls())
}

func TestResolveNilSwitch(t *testing.T) {
	r := &countingResolver{}
	o := MakeOrchestrator(NewAddressCache(DefaultTableBits), r, nil)
	_, err := o.Resolve(context.Background(), mustAddr(t, "10.0.0.1"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), r.Calls())
}

func TestResolveUnspecified(t *testing.T) {
	o, r, _ := makeTestOrchestrator(nil, true)
	for _, s := range []string{"0.0.0.0", "::"} {
		_, err := o.Resolve(context.Background(), mustAddr(t, s))
		assert.ErrorIs(t, err, ErrNotHandled)
		assert.False(t, errors.Is(err, ErrNotFound))
	}
	_, err := o.Resolve(context.Background(), types.Address{})
	assert.ErrorIs(t, err, ErrNotHandled)

	assert.Equal(t, int64(0), r.Calls())
	assert.Equal(t, 0, o.Cache.Len())
	assert.Equal(t, uint64(3), o.PerfStats.NotHandled)
}

func TestResolvePassiveEntryWins(t *testing.T) {
	a := mustAddr(t, "10.0.0.1")
	cache := NewAddressCache(DefaultTableBits)
	r := ResolverFunc(func(ctx context.Context, addr types.Address) (string, error) {
		// passive capture beats the slow active lookup
		cache.Insert(addr, "passive.example")
		return "active.example", nil
	})
	o := MakeOrchestrator(cache, r, NewToggle(true))

	name, err := o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "active.example", name)

	out, _ := cache.Lookup(a)
	assert.Equal(t, "passive.example", out.Hostname)
	name, err = o.Resolve(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "passive.example", name)
}

func TestResolveConcurrentSingleCall(t *testing.T) {
	o, r, _ := makeTestOrchestrator(map[string]string{"10.0.0.1": "router.local"}, true)
	r.delay = 100 * time.Millisecond
	a := mustAddr(t, "10.0.0.1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := o.Resolve(context.Background(), a)
			assert.NoError(t, err)
			assert.Equal(t, "router.local", name)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), r.Calls())
}

// blockingResolver answers only once release is closed.
func blockingResolver(release chan struct{}, name string) ResolverFunc {
	return func(ctx context.Context, addr types.Address) (string, error) {
		select {
		case <-release:
			return name, nil
		case <-ctx.Done():
			return "", ErrNotResolvable
		}
	}
}

func TestResolveCancelledCallerCachesNothing(t *testing.T) {
	release := make(chan struct{})
	o := MakeOrchestrator(NewAddressCache(DefaultTableBits),
		blockingResolver(release, "late.example"), NewToggle(true))
	a := mustAddr(t, "10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Resolve(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)
	_, ok := o.Lookup(a)
	assert.False(t, ok)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = o.Resolve(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok = o.Lookup(a)
	assert.False(t, ok)
	assert.Equal(t, uint64(2), o.PerfStats.Abandoned)

	// the detached lookup still fills the cache
	close(release)
	assert.Eventually(t, func() bool {
		out, ok := o.Lookup(a)
		return ok && out.Kind == Positive && out.Hostname == "late.example"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestResolvePatientCallerOutlivesImpatientOne(t *testing.T) {
	release := make(chan struct{})
	o := MakeOrchestrator(NewAddressCache(DefaultTableBits),
		blockingResolver(release, "slow.example"), NewToggle(true))
	a := mustAddr(t, "10.0.0.2")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := o.Resolve(ctx, a)
		firstErr <- err
	}()

	type result struct {
		name string
		err  error
	}
	second := make(chan result, 1)
	go func() {
		time.Sleep(5 * time.Millisecond)
		name, err := o.Resolve(context.Background(), a)
		second <- result{name, err}
	}()

	assert.ErrorIs(t, <-firstErr, ErrNotFound)
	_, ok := o.Lookup(a)
	assert.False(t, ok)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "slow.example", res.name)
	out, ok := o.Lookup(a)
	assert.True(t, ok)
	assert.Equal(t, Positive, out.Kind)
}

func TestResolveTypedNilToggle(t *testing.T) {
	r := &countingResolver{}
	var tg *Toggle
	o := MakeOrchestrator(NewAddressCache(DefaultTableBits), r, tg)
	assert.NotPanics(t, func() {
		_, err := o.Resolve(context.Background(), mustAddr(t, "10.0.0.1"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
	assert.Equal(t, int64(0), r.Calls())
	assert.False(t, tg.Enabled())
}
