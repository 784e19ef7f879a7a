package processing

// DCSO rdnscache
// Copyright (c) 2017, 2019, 2026, DCSO GmbH

import (
	"strings"
	"sync"
	"time"

	"github.com/DCSO/rdnscache/resolv"
	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// DefaultPDNSSuppressPeriod is the time during which a repeated observation
// of the same answer is not passed on to the cache again.
const DefaultPDNSSuppressPeriod = 5 * time.Minute

// PDNSHandlerPerfStats contains performance stats written to InfluxDB
// for monitoring.
type PDNSHandlerPerfStats struct {
	Observed   uint64 `influx:"pdns_observed"`
	Inserted   uint64 `influx:"pdns_inserted"`
	Duplicate  uint64 `influx:"pdns_duplicate"`
	Suppressed uint64 `influx:"pdns_suppressed"`
	Ignored    uint64 `influx:"pdns_ignored"`
}

// PDNSHandler is a handler that learns hostnames from DNS answers observed
// in EVE events and feeds them into a HostCache. A and AAAA answers map the
// answer address to the queried name, PTR answers map the address encoded
// in the query name to the answer name.
type PDNSHandler struct {
	Logger             *log.Entry
	HostCache          resolv.HostCache
	Seen               *cache.Cache
	StatsLock          sync.Mutex
	PerfStats          PDNSHandlerPerfStats
	StatsEncoder       *util.PerformanceStatsEncoder
	StopCounterChan    chan bool
	StoppedCounterChan chan bool
}

// MakePDNSHandler returns a new PDNSHandler feeding the given HostCache.
// Identical answers seen again within suppressPeriod are skipped; a zero
// period selects DefaultPDNSSuppressPeriod.
func MakePDNSHandler(hc resolv.HostCache, suppressPeriod time.Duration) *PDNSHandler {
	if suppressPeriod == 0 {
		suppressPeriod = DefaultPDNSSuppressPeriod
	}
	return &PDNSHandler{
		Logger: log.WithFields(log.Fields{
			"domain": "pdns",
		}),
		HostCache: hc,
		Seen:      cache.New(suppressPeriod, 2*suppressPeriod),
	}
}

func (a *PDNSHandler) count(f func(*PDNSHandlerPerfStats)) {
	a.StatsLock.Lock()
	f(&a.PerfStats)
	a.StatsLock.Unlock()
}

func (a *PDNSHandler) observe(rrname, rrtype, rdata string) {
	var addr types.Address
	var hostname string
	var err error

	a.count(func(s *PDNSHandlerPerfStats) { s.Observed++ })
	switch rrtype {
	case "A", "AAAA":
		addr, err = types.ParseAddress(rdata)
		hostname = rrname
	case "PTR":
		addr, err = resolv.AddressFromReverseName(rrname)
		hostname = rdata
	default:
		a.count(func(s *PDNSHandlerPerfStats) { s.Ignored++ })
		return
	}
	hostname = strings.TrimSuffix(hostname, ".")
	if err != nil || hostname == "" || addr.IsUnspecified() {
		a.count(func(s *PDNSHandlerPerfStats) { s.Ignored++ })
		return
	}

	key := rrtype + "/" + addr.String() + "/" + hostname
	if _, found := a.Seen.Get(key); found {
		a.count(func(s *PDNSHandlerPerfStats) { s.Suppressed++ })
		return
	}
	a.Seen.SetDefault(key, true)

	if a.HostCache.Insert(addr, hostname) {
		a.Logger.WithFields(log.Fields{
			"addr":     addr.String(),
			"hostname": hostname,
		}).Debug("learned hostname")
		a.count(func(s *PDNSHandlerPerfStats) { s.Inserted++ })
	} else {
		a.count(func(s *PDNSHandlerPerfStats) { s.Duplicate++ })
	}
}

// Consume processes an Entry, passing hostnames from successful DNS answers
// on to the cache.
func (a *PDNSHandler) Consume(e *types.Entry) error {
	if e.DNSType != "answer" || (e.DNSRCode != "" && e.DNSRCode != "NOERROR") {
		return nil
	}
	if e.DNSVersion == 2 {
		for _, ans := range e.DNSAnswers {
			a.observe(ans.DNSRRName, ans.DNSRRType, ans.DNSRData)
		}
		return nil
	}
	if e.DNSRData != "" {
		a.observe(e.DNSRRName, e.DNSRRType, e.DNSRData)
	}
	return nil
}

// GetName returns the name of the handler
func (a *PDNSHandler) GetName() string {
	return "passive DNS handler"
}

// GetEventTypes returns a slice of event type strings that this handler
// should be applied to
func (a *PDNSHandler) GetEventTypes() []string {
	return []string{types.EventTypeDNS}
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (a *PDNSHandler) SubmitStats(sc *util.PerformanceStatsEncoder) {
	a.StatsEncoder = sc
}

func (a *PDNSHandler) runCounter() {
	sTime := time.Now()
	for {
		time.Sleep(500 * time.Millisecond)
		select {
		case <-a.StopCounterChan:
			close(a.StoppedCounterChan)
			return
		default:
			if a.StatsEncoder == nil || time.Since(sTime) < a.StatsEncoder.SubmitPeriod {
				continue
			}
			a.StatsLock.Lock()
			myStats := a.PerfStats
			a.PerfStats = PDNSHandlerPerfStats{}
			a.StatsLock.Unlock()

			a.StatsEncoder.Submit(myStats)
			sTime = time.Now()
		}
	}
}

// Run starts the background stats submission for this handler.
func (a *PDNSHandler) Run() {
	a.StopCounterChan = make(chan bool)
	a.StoppedCounterChan = make(chan bool)
	go a.runCounter()
}

// Stop causes the handler to cease submitting stats.
func (a *PDNSHandler) Stop(stopChan chan bool) {
	close(a.StopCounterChan)
	<-a.StoppedCounterChan
	close(stopChan)
}
