package processing

// DCSO rdnscache
// Copyright (c) 2019, 2020, 2026, DCSO GmbH

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/DCSO/rdnscache/resolv"
	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"
	"github.com/buger/jsonparser"

	log "github.com/sirupsen/logrus"
	"github.com/yl2chen/cidranger"
)

// RDNSHandlerPerfStats contains performance stats written to InfluxDB
// for monitoring.
type RDNSHandlerPerfStats struct {
	Enriched    uint64 `influx:"rdns_enriched"`
	Unnamed     uint64 `influx:"rdns_unnamed"`
	Skipped     uint64 `influx:"rdns_skipped_public"`
	InvalidAddr uint64 `influx:"rdns_invalid_address"`
}

// RDNSHandler is a handler that enriches events with hostnames for both
// source and destination IP addresses, as provided by a HostNamer.
type RDNSHandler struct {
	sync.Mutex
	Logger             *log.Entry
	HostNamer          resolv.HostNamer
	PrivateRanges      cidranger.Ranger
	PrivateRangesOnly  bool
	Timeout            time.Duration
	PerfStats          RDNSHandlerPerfStats
	StatsEncoder       *util.PerformanceStatsEncoder
	StopCounterChan    chan bool
	StoppedCounterChan chan bool
}

// MakeRDNSHandler returns a new RDNSHandler, backed by the passed HostNamer.
func MakeRDNSHandler(hn resolv.HostNamer) *RDNSHandler {
	rh := &RDNSHandler{
		Logger: log.WithFields(log.Fields{
			"domain": "rdns",
		}),
		PrivateRanges: cidranger.NewPCTrieRanger(),
		HostNamer:     hn,
	}
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",
	} {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			log.Fatalf("cannot parse fixed private IP range %v", cidr)
		}
		rh.PrivateRanges.Insert(cidranger.NewBasicRangerEntry(*block))
	}
	return rh
}

// EnableOnlyPrivateIPRanges ensures that only private (RFC1918) IP ranges
// are enriched
func (a *RDNSHandler) EnableOnlyPrivateIPRanges() {
	a.PrivateRangesOnly = true
}

func (a *RDNSHandler) hostname(ipstr string) (string, bool, error) {
	ip := net.ParseIP(ipstr)
	if ip == nil {
		a.Lock()
		a.PerfStats.InvalidAddr++
		a.Unlock()
		a.Logger.WithField("ip", ipstr).Debug("IP not valid")
		return "", false, nil
	}
	isPrivate, err := a.PrivateRanges.Contains(ip)
	if err != nil {
		return "", false, err
	}
	if a.PrivateRangesOnly && !isPrivate {
		a.Lock()
		a.PerfStats.Skipped++
		a.Unlock()
		return "", false, nil
	}
	ctx := context.Background()
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	name, err := a.HostNamer.Resolve(ctx, types.AddressFromIP(ip))
	if err != nil {
		if errors.Is(err, resolv.ErrNotFound) || errors.Is(err, resolv.ErrNotHandled) {
			err = nil
		}
		a.Lock()
		a.PerfStats.Unnamed++
		a.Unlock()
		return "", false, err
	}
	if name == "" {
		a.Lock()
		a.PerfStats.Unnamed++
		a.Unlock()
		return "", false, nil
	}
	a.Lock()
	a.PerfStats.Enriched++
	a.Unlock()
	return name, true, nil
}

func setHostField(line []byte, name string, key string) ([]byte, error) {
	val, err := util.EscapeJSON(name)
	if err != nil {
		return nil, err
	}
	return jsonparser.Set(line, []byte(val), key)
}

// Consume processes an Entry and enriches it
func (a *RDNSHandler) Consume(e *types.Entry) error {
	line := []byte(e.JSONLine)
	modified := false

	if e.SrcIP != "" {
		name, ok, err := a.hostname(e.SrcIP)
		if err != nil {
			return err
		}
		if ok {
			line, err = setHostField(line, name, "src_host")
			if err != nil {
				return err
			}
			e.SrcHost = name
			modified = true
		}
	}
	if e.DestIP != "" {
		name, ok, err := a.hostname(e.DestIP)
		if err != nil {
			return err
		}
		if ok {
			line, err = setHostField(line, name, "dest_host")
			if err != nil {
				return err
			}
			e.DestHost = name
			modified = true
		}
	}
	if modified {
		e.JSONLine = string(line)
	}
	return nil
}

// GetName returns the name of the handler
func (a *RDNSHandler) GetName() string {
	return "reverse DNS handler"
}

// GetEventTypes returns a slice of event type strings that this handler
// should be applied to
func (a *RDNSHandler) GetEventTypes() []string {
	return []string{"http", "dns", "tls", "smtp", "flow", "ssh", "smb", "alert"}
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (a *RDNSHandler) SubmitStats(sc *util.PerformanceStatsEncoder) {
	a.StatsEncoder = sc
}

func (a *RDNSHandler) runCounter() {
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
			a.Lock()
			myStats := a.PerfStats
			a.PerfStats = RDNSHandlerPerfStats{}
			a.Unlock()

			a.StatsEncoder.Submit(myStats)
			sTime = time.Now()
		}
	}
}

// Run starts the background stats submission for this handler.
func (a *RDNSHandler) Run() {
	a.StopCounterChan = make(chan bool)
	a.StoppedCounterChan = make(chan bool)
	go a.runCounter()
}

// Stop causes the handler to cease submitting stats. It is safe to call on
// a handler that was never run.
func (a *RDNSHandler) Stop(stopChan chan bool) {
	if a.StopCounterChan != nil {
		close(a.StopCounterChan)
		<-a.StoppedCounterChan
		a.StopCounterChan = nil
	}
	close(stopChan)
}
