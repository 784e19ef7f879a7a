package processing

// DCSO rdnscache
// Copyright (c) 2017, 2018, 2026, DCSO GmbH

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	log "github.com/sirupsen/logrus"
)

// HandlerDispatcherPerfStats contains performance stats written to InfluxDB
// for monitoring.
type HandlerDispatcherPerfStats struct {
	DispatchedPerSec uint64 `influx:"dispatch_calls_per_sec"`
	HandlerErrors    uint64 `influx:"dispatch_handler_errors"`
}

// HandlerDispatcher applies a set of Handlers to a stream of Entry objects.
// Handlers registered for an event type run before handlers registered for
// all types ("*"), in registration order. The default handler, if any, runs
// last.
type HandlerDispatcher struct {
	Lock               sync.Mutex
	DispatchMap        map[string]([]Handler)
	DefaultHandler     Handler
	PerfStats          HandlerDispatcherPerfStats
	Logger             *log.Entry
	StatsEncoder       *util.PerformanceStatsEncoder
	StopCounterChan    chan bool
	StoppedCounterChan chan bool
	dispatched         uint64
	errors             uint64
}

// DefaultHandler emits every consumed event on an output channel.
type DefaultHandler struct {
	OutChan chan types.Entry
}

// GetName returns the name of the default handler.
func (h *DefaultHandler) GetName() string {
	return "Default handler"
}

// GetEventTypes is not consulted, the default handler is never registered.
func (h *DefaultHandler) GetEventTypes() []string {
	return []string{"not applicable"}
}

// Consume emits the consumed entry on the output channel.
func (h *DefaultHandler) Consume(e *types.Entry) error {
	h.OutChan <- *e
	return nil
}

func (ad *HandlerDispatcher) runCounter() {
	defer close(ad.StoppedCounterChan)
	if ad.StatsEncoder == nil {
		<-ad.StopCounterChan
		return
	}
	period := ad.StatsEncoder.SubmitPeriod
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ad.StopCounterChan:
			return
		case <-ticker.C:
			stats := HandlerDispatcherPerfStats{
				DispatchedPerSec: atomic.SwapUint64(&ad.dispatched, 0),
				HandlerErrors:    atomic.SwapUint64(&ad.errors, 0),
			}
			if secs := uint64(period.Seconds()); secs > 0 {
				stats.DispatchedPerSec /= secs
			}
			ad.Lock.Lock()
			ad.PerfStats = stats
			ad.Lock.Unlock()
			ad.StatsEncoder.Submit(stats)
		}
	}
}

// MakeHandlerDispatcher returns a new HandlerDispatcher. If defaultOut is not
// nil, every dispatched event is finally emitted on it.
func MakeHandlerDispatcher(defaultOut chan types.Entry) *HandlerDispatcher {
	ad := &HandlerDispatcher{
		DispatchMap: make(map[string]([]Handler)),
		Logger: log.WithFields(log.Fields{
			"domain": "dispatch",
		}),
	}
	if defaultOut != nil {
		ad.DefaultHandler = &DefaultHandler{
			OutChan: defaultOut,
		}
		ad.Logger.WithFields(log.Fields{
			"type": "*",
			"name": "default handler",
		}).Debug("event handler added")
	}
	return ad
}

// RegisterHandler adds h to the handlers called for each of its event types.
// Handlers must be registered before events are dispatched.
func (ad *HandlerDispatcher) RegisterHandler(h Handler) {
	for _, eventType := range h.GetEventTypes() {
		ad.DispatchMap[eventType] = append(ad.DispatchMap[eventType], h)
		ad.Logger.WithFields(log.Fields{
			"type": eventType,
			"name": h.GetName(),
		}).Info("event handler added")
	}
}

func (ad *HandlerDispatcher) consumeAll(hs []Handler, e *types.Entry) {
	for _, h := range hs {
		if err := h.Consume(e); err != nil {
			atomic.AddUint64(&ad.errors, 1)
			ad.Logger.WithError(err).WithField("name", h.GetName()).Warn("handler failed")
		}
	}
}

// Dispatch applies the registered handlers to e.
func (ad *HandlerDispatcher) Dispatch(e *types.Entry) {
	ad.consumeAll(ad.DispatchMap[e.EventType], e)
	ad.consumeAll(ad.DispatchMap["*"], e)
	if ad.DefaultHandler != nil {
		ad.DefaultHandler.Consume(e)
	}
	atomic.AddUint64(&ad.dispatched, 1)
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (ad *HandlerDispatcher) SubmitStats(sc *util.PerformanceStatsEncoder) {
	ad.StatsEncoder = sc
}

// Run starts the background service for this handler
func (ad *HandlerDispatcher) Run() {
	ad.StopCounterChan = make(chan bool)
	ad.StoppedCounterChan = make(chan bool)
	go ad.runCounter()
}

// Stop causes the handler to cease counting and submitting data
func (ad *HandlerDispatcher) Stop(stopChan chan bool) {
	close(ad.StopCounterChan)
	<-ad.StoppedCounterChan
	close(stopChan)
}
