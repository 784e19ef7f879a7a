package processing

// DCSO rdnscache
// Copyright (c) 2017, 2020, 2021, 2026, DCSO GmbH

import (
	"net"
	"sync"
	"time"

	"github.com/DCSO/rdnscache/resolv"
	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	log "github.com/sirupsen/logrus"
)

// ForwardPerfStats contains performance stats written to InfluxDB
// for monitoring.
type ForwardPerfStats struct {
	Received     uint64 `influx:"forward_received_per_sec"`
	Dropped      uint64 `influx:"forward_dropped"`
	BufferLength uint64 `influx:"forward_buffer_length"`
}

// ForwardHandler is a handler that processes events by writing their JSON
// representation into a UNIX socket, optionally enriched with hostnames for
// the source and destination addresses. This is limited by a list of allowed
// event types to be forwarded. Also handles reconnection.
type ForwardHandler struct {
	Logger              *log.Entry
	DoRDNS              bool
	RDNSHandler         *RDNSHandler
	AddedFields         string
	ForwardEventChan    chan []byte
	OutputSocket        string
	OutputConn          net.Conn
	Reconnecting        bool
	ReconnLock          sync.Mutex
	ReconnectNotifyChan chan bool
	StopReconnectChan   chan bool
	ReconnectTimes      int
	ReconnectDelay      time.Duration
	PerfStats           ForwardPerfStats
	StatsEncoder        *util.PerformanceStatsEncoder
	StoppedChan         chan bool
	StopCounterChan     chan bool
	StoppedCounterChan  chan bool
	Running             bool
	RunLock             sync.Mutex
	Lock                sync.Mutex
}

// MakeForwardHandler creates a new forwarding handler writing to the given
// socket, giving up after reconnectTimes failed connection attempts (0 means
// retry forever).
func MakeForwardHandler(reconnectTimes int, outputSocket string) *ForwardHandler {
	fh := &ForwardHandler{
		Logger: log.WithFields(log.Fields{
			"domain": "forward",
		}),
		OutputSocket:        outputSocket,
		ReconnectTimes:      reconnectTimes,
		ReconnectDelay:      10 * time.Second,
		ReconnectNotifyChan: make(chan bool, 1),
		StopReconnectChan:   make(chan bool),
		ForwardEventChan:    make(chan []byte, 10000),
		AddedFields:         "}",
	}
	return fh
}

func (fh *ForwardHandler) notifyReconnect() {
	select {
	case fh.ReconnectNotifyChan <- true:
	default:
	}
}

func (fh *ForwardHandler) reconnectForward() {
	for range fh.ReconnectNotifyChan {
		var i int
		fh.ReconnLock.Lock()
		if fh.Reconnecting {
			fh.ReconnLock.Unlock()
			continue
		}
		fh.Reconnecting = true
		fh.ReconnLock.Unlock()

		fh.Logger.Infof("Reconnecting to forwarding socket (%s)...", fh.OutputSocket)
		outputConn, myerror := net.Dial("unix", fh.OutputSocket)
		for i = 0; (fh.ReconnectTimes == 0 || i < fh.ReconnectTimes) && myerror != nil; i++ {
			select {
			case <-fh.StopReconnectChan:
				return
			default:
				fh.Logger.WithFields(log.Fields{
					"retry":      i + 1,
					"maxretries": fh.ReconnectTimes,
				}).Warnf("error connecting to output socket, retrying: %s", myerror)
				time.Sleep(fh.ReconnectDelay)
				outputConn, myerror = net.Dial("unix", fh.OutputSocket)
			}
		}
		if myerror != nil {
			fh.Logger.WithFields(log.Fields{
				"retries": i,
			}).Fatalf("permanent error connecting to output socket: %s", myerror)
		}
		if i > 0 {
			fh.Logger.WithFields(log.Fields{
				"retry_attempts": i,
			}).Infof("connection to output socket successful")
		}
		fh.Lock.Lock()
		fh.OutputConn = outputConn
		fh.Lock.Unlock()
		fh.ReconnLock.Lock()
		fh.Reconnecting = false
		fh.ReconnLock.Unlock()
	}
}

func (fh *ForwardHandler) runForward() {
	var err error
	for item := range fh.ForwardEventChan {
		fh.Lock.Lock()
		fh.PerfStats.Received++
		fh.Lock.Unlock()

		fh.ReconnLock.Lock()
		if fh.Reconnecting {
			fh.ReconnLock.Unlock()
			fh.Lock.Lock()
			fh.PerfStats.Dropped++
			fh.Lock.Unlock()
			continue
		}
		fh.ReconnLock.Unlock()

		fh.Lock.Lock()
		if fh.OutputConn == nil {
			fh.PerfStats.Dropped++
			fh.Lock.Unlock()
			continue
		}
		_, err = fh.OutputConn.Write(append(item, '\n'))
		if err != nil {
			fh.OutputConn.Close()
			fh.OutputConn = nil
			fh.PerfStats.Dropped++
			fh.Lock.Unlock()
			fh.Logger.Warn(err)
			fh.notifyReconnect()
			continue
		}
		fh.Lock.Unlock()
	}
	close(fh.StoppedChan)
}

func (fh *ForwardHandler) runCounter() {
	sTime := time.Now()
	for {
		time.Sleep(500 * time.Millisecond)
		select {
		case <-fh.StopCounterChan:
			close(fh.StoppedCounterChan)
			return
		default:
			if fh.StatsEncoder == nil || time.Since(sTime) < fh.StatsEncoder.SubmitPeriod {
				continue
			}
			// Take a local copy of the counters so the live ones are released
			// before the blocking submission.
			fh.Lock.Lock()
			myStats := ForwardPerfStats{
				Dropped:      fh.PerfStats.Dropped,
				Received:     fh.PerfStats.Received / uint64(fh.StatsEncoder.SubmitPeriod.Seconds()),
				BufferLength: uint64(len(fh.ForwardEventChan)),
			}
			fh.PerfStats.Received = 0
			fh.Lock.Unlock()

			fh.StatsEncoder.Submit(myStats)
			sTime = time.Now()
		}
	}
}

// Consume processes an Entry and prepares it to be sent off to the
// forwarding sink
func (fh *ForwardHandler) Consume(inEntry *types.Entry) error {
	if !util.AllowType(inEntry.EventType) {
		return nil
	}
	// make copy to pass on from here
	e := *inEntry
	// we also perform rDNS enrichment if requested
	if fh.DoRDNS && fh.RDNSHandler != nil {
		err := fh.RDNSHandler.Consume(&e)
		if err != nil {
			return err
		}
	}
	// Replace the final brace `}` in the JSON with the prepared string to
	// add the 'added fields' defined in the config. If the length of this
	// string is 1 then there are no added fields, only a final brace '}'.
	if len(fh.AddedFields) > 1 && len(e.JSONLine) > 0 {
		j := e.JSONLine
		l := len(j)
		j = j[:l-1]
		j += fh.AddedFields
		e.JSONLine = j
	}

	fh.RunLock.Lock()
	defer fh.RunLock.Unlock()
	if !fh.Running {
		return nil
	}
	select {
	case fh.ForwardEventChan <- []byte(e.JSONLine):
	default:
		fh.Lock.Lock()
		fh.PerfStats.Dropped++
		fh.Lock.Unlock()
	}
	return nil
}

// GetName returns the name of the handler
func (fh *ForwardHandler) GetName() string {
	return "Forwarding handler"
}

// GetEventTypes returns a slice of event type strings that this handler
// should be applied to
func (fh *ForwardHandler) GetEventTypes() []string {
	if util.ForwardAllEvents {
		return []string{"*"}
	}
	return util.GetAllowedTypes()
}

// EnableRDNS switches on hostname enrichment for source and destination
// IPs in outgoing EVE events, using the given HostNamer.
func (fh *ForwardHandler) EnableRDNS(hn resolv.HostNamer) *RDNSHandler {
	fh.DoRDNS = true
	fh.RDNSHandler = MakeRDNSHandler(hn)
	if fh.StatsEncoder != nil {
		fh.RDNSHandler.SubmitStats(fh.StatsEncoder)
	}
	return fh.RDNSHandler
}

// AddFields enables the addition of a custom set of top-level fields to the
// forwarded JSON.
func (fh *ForwardHandler) AddFields(fields map[string]string) error {
	addedFields, err := util.PreprocessAddedFields(fields)
	if err != nil {
		return err
	}
	fh.AddedFields = addedFields
	return nil
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
// Enrichment stats are submitted along with the forwarding ones.
func (fh *ForwardHandler) SubmitStats(sc *util.PerformanceStatsEncoder) {
	fh.StatsEncoder = sc
	if fh.RDNSHandler != nil {
		fh.RDNSHandler.SubmitStats(sc)
	}
}

// Run starts forwarding of JSON representations of all consumed events
func (fh *ForwardHandler) Run() {
	fh.RunLock.Lock()
	defer fh.RunLock.Unlock()
	if fh.Running {
		return
	}
	fh.StoppedChan = make(chan bool)
	fh.StopCounterChan = make(chan bool)
	fh.StoppedCounterChan = make(chan bool)
	go fh.reconnectForward()
	fh.notifyReconnect()
	go fh.runForward()
	go fh.runCounter()
	if fh.DoRDNS && fh.RDNSHandler != nil {
		fh.RDNSHandler.Run()
	}
	fh.Running = true
}

// Stop stops forwarding of JSON representations of all consumed events.
// Events already queued are written out before the socket is closed.
func (fh *ForwardHandler) Stop(stoppedChan chan bool) {
	fh.RunLock.Lock()
	if !fh.Running {
		fh.RunLock.Unlock()
		close(stoppedChan)
		return
	}
	fh.Running = false
	close(fh.ForwardEventChan)
	fh.RunLock.Unlock()

	<-fh.StoppedChan
	close(fh.StopReconnectChan)
	close(fh.ReconnectNotifyChan)
	close(fh.StopCounterChan)
	<-fh.StoppedCounterChan
	if fh.RDNSHandler != nil {
		rdnsStopped := make(chan bool)
		fh.RDNSHandler.Stop(rdnsStopped)
		<-rdnsStopped
	}

	fh.Lock.Lock()
	if fh.OutputConn != nil {
		fh.OutputConn.Close()
		fh.OutputConn = nil
	}
	fh.Lock.Unlock()
	close(stoppedChan)
}
