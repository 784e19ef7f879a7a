package resolv

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// OrchestratorPerfStats contains performance stats written to InfluxDB
// for monitoring.
type OrchestratorPerfStats struct {
	CacheHits    uint64 `influx:"rdns_cache_hits"`
	NegativeHits uint64 `influx:"rdns_cache_negative_hits"`
	Misses       uint64 `influx:"rdns_cache_misses"`
	Disabled     uint64 `influx:"rdns_resolve_disabled"`
	NotHandled   uint64 `influx:"rdns_not_handled"`
	Resolved     uint64 `influx:"rdns_resolved"`
	Abandoned    uint64 `influx:"rdns_resolve_abandoned"`
	Failed       uint64 `influx:"rdns_resolve_failed"`
	Entries      uint64 `influx:"rdns_cache_entries"`
}

// Orchestrator answers hostname queries from an AddressCache, falling back
// to a Resolver on cache misses if resolution is enabled. Every resolver
// result, including failures, is stored in the cache with insert-if-absent
// semantics, so entries written earlier by other components always win.
type Orchestrator struct {
	Cache              *AddressCache
	Resolver           Resolver
	Switch             Switch
	Logger             *log.Entry
	StatsLock          sync.Mutex
	PerfStats          OrchestratorPerfStats
	StatsEncoder       *util.PerformanceStatsEncoder
	StopCounterChan    chan bool
	StoppedCounterChan chan bool
	inflight           singleflight.Group
}

// MakeOrchestrator returns a new Orchestrator backed by the given cache,
// resolver and switch. A nil switch disables resolution.
func MakeOrchestrator(cache *AddressCache, resolver Resolver, sw Switch) *Orchestrator {
	return &Orchestrator{
		Cache:    cache,
		Resolver: resolver,
		Switch:   sw,
		Logger: log.WithFields(log.Fields{
			"domain": "resolv",
		}),
	}
}

func (o *Orchestrator) count(f func(*OrchestratorPerfStats)) {
	o.StatsLock.Lock()
	f(&o.PerfStats)
	o.StatsLock.Unlock()
}

func (o *Orchestrator) enabled() bool {
	return o.Switch != nil && o.Switch.Enabled()
}

// Lookup returns the cached outcome for addr without resolving it.
func (o *Orchestrator) Lookup(addr types.Address) (Outcome, bool) {
	return o.Cache.Lookup(addr)
}

// Resolve returns the hostname for addr. The unspecified address yields
// ErrNotHandled. A cached negative result yields an empty hostname and no
// error. If addr is not cached and resolution is disabled, ErrNotFound is
// returned and nothing is cached. Otherwise the resolver is called and its
// outcome cached; a resolver failure yields ErrNotFound.
//
// Concurrent calls for the same uncached address share one resolver call.
// That call is not bound to any caller's cancellation, only to the
// resolver's own timeout. A caller whose context ends first gets
// ErrNotFound, while the result is still cached once it arrives.
func (o *Orchestrator) Resolve(ctx context.Context, addr types.Address) (string, error) {
	if addr.IsUnspecified() {
		o.count(func(s *OrchestratorPerfStats) { s.NotHandled++ })
		return "", ErrNotHandled
	}

	if out, ok := o.Cache.Lookup(addr); ok {
		o.count(func(s *OrchestratorPerfStats) {
			if out.Kind == Negative {
				s.NegativeHits++
			} else {
				s.CacheHits++
			}
		})
		return out.Hostname, nil
	}
	o.count(func(s *OrchestratorPerfStats) { s.Misses++ })

	// The cache may still be filled by passive observation later, so a
	// disabled resolver must not leave a negative entry behind.
	if !o.enabled() {
		o.count(func(s *OrchestratorPerfStats) { s.Disabled++ })
		return "", ErrNotFound
	}

	if err := ctx.Err(); err != nil {
		o.count(func(s *OrchestratorPerfStats) { s.Abandoned++ })
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	key := string([]byte{byte(addr.Family)}) + string(addr.Bytes)
	flight := context.WithoutCancel(ctx)
	ch := o.inflight.DoChan(key, func() (interface{}, error) {
		return o.resolveAndStore(flight, addr.Clone())
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		o.count(func(s *OrchestratorPerfStats) { s.Abandoned++ })
		return "", fmt.Errorf("%w: %v", ErrNotFound, ctx.Err())
	}
}

func (o *Orchestrator) resolveAndStore(ctx context.Context, addr types.Address) (string, error) {
	// a previous flight for this address may have finished in the meantime
	if out, ok := o.Cache.Lookup(addr); ok {
		return out.Hostname, nil
	}
	o.Logger.Debugf("resolving %s", addr)
	name, err := o.Resolver.LookupHostname(ctx, addr)
	if err == nil && name == "" {
		err = ErrNotResolvable
	}
	if err != nil {
		o.Logger.WithError(err).Debugf("resolution of %s failed", addr)
		o.Cache.InsertIfAbsent(addr, NegativeOutcome())
		o.count(func(s *OrchestratorPerfStats) { s.Failed++ })
		return "", ErrNotFound
	}
	o.Cache.InsertIfAbsent(addr, PositiveOutcome(name))
	o.count(func(s *OrchestratorPerfStats) { s.Resolved++ })
	return name, nil
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (o *Orchestrator) SubmitStats(sc *util.PerformanceStatsEncoder) {
	o.StatsEncoder = sc
}

func (o *Orchestrator) runCounter() {
	sTime := time.Now()
	for {
		time.Sleep(500 * time.Millisecond)
		select {
		case <-o.StopCounterChan:
			close(o.StoppedCounterChan)
			return
		default:
			if o.StatsEncoder == nil || time.Since(sTime) < o.StatsEncoder.SubmitPeriod {
				continue
			}
			o.StatsLock.Lock()
			myStats := o.PerfStats
			o.PerfStats = OrchestratorPerfStats{}
			o.StatsLock.Unlock()
			myStats.Entries = uint64(o.Cache.Len())

			o.StatsEncoder.Submit(myStats)
			sTime = time.Now()
		}
	}
}

// Run starts the background stats submission for this component.
func (o *Orchestrator) Run() {
	o.StopCounterChan = make(chan bool)
	o.StoppedCounterChan = make(chan bool)
	go o.runCounter()
}

// Stop causes the component to cease submitting stats.
func (o *Orchestrator) Stop(stopChan chan bool) {
	close(o.StopCounterChan)
	<-o.StoppedCounterChan
	close(stopChan)
}
