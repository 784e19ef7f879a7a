package input

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"bufio"
	"errors"
	"net"
	"time"

	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	log "github.com/sirupsen/logrus"
)

const (
	socketAcceptTimeout = 1 * time.Second
	socketMaxLineSize   = 32 * 1024 * 1024
)

// SocketInputPerfStats contains performance stats written to InfluxDB
// for monitoring.
type SocketInputPerfStats struct {
	SocketQueueLength  uint64 `influx:"input_queue_length"`
	SocketQueueDropped uint64 `influx:"input_queue_dropped"`
	SocketParseErrors  uint64 `influx:"input_parse_errors"`
}

// SocketInput is an Input accepting EVE JSON lines on a Unix socket. Clients
// are served one at a time.
type SocketInput struct {
	EventChan         chan types.Entry
	Verbose           bool
	Running           bool
	InputListener     *net.UnixListener
	StopChan          chan bool
	StoppedChan       chan bool
	DropIfChannelFull bool
	PerfStats         SocketInputPerfStats
	StatsEncoder      *util.PerformanceStatsEncoder
	Logger            *log.Entry
}

// GetName returns a printable name for the input
func (si *SocketInput) GetName() string {
	return "Socket input"
}

func (si *SocketInput) emit(e types.Entry) {
	if !si.DropIfChannelFull {
		si.EventChan <- e
		return
	}
	select {
	case si.EventChan <- e:
	default:
		si.PerfStats.SocketQueueDropped++
	}
}

// serveConn reads events from c until EOF. It returns false if the input was
// stopped meanwhile.
func (si *SocketInput) serveConn(c net.Conn) bool {
	defer c.Close()
	start := time.Now()
	totalLen := 0

	scanner := bufio.NewScanner(c)
	scanner.Buffer(make([]byte, 0, 64*1024), socketMaxLineSize)
	for scanner.Scan() {
		select {
		case <-si.StopChan:
			return false
		default:
		}
		line := scanner.Bytes()
		totalLen += len(line)
		e, err := util.ParseJSON(line)
		if err != nil {
			si.PerfStats.SocketParseErrors++
			si.Logger.WithError(err).Warn("invalid input line")
			continue
		}
		si.emit(e)
	}
	if err := scanner.Err(); err != nil {
		si.Logger.WithError(err).Warn("reading from socket")
	}
	if si.Verbose {
		si.Logger.WithFields(log.Fields{
			"size":        totalLen,
			"elapsedTime": time.Since(start),
		}).Info("connection handled")
	}
	return true
}

func (si *SocketInput) handleServerConnection() {
	defer close(si.StoppedChan)
	defer si.InputListener.Close()
	for {
		select {
		case <-si.StopChan:
			return
		default:
		}
		si.InputListener.SetDeadline(time.Now().Add(socketAcceptTimeout))
		c, err := si.InputListener.Accept()
		if err != nil {
			var opErr *net.OpError
			if !errors.As(err, &opErr) || !opErr.Timeout() {
				si.Logger.WithError(err).Info("accept failed")
			}
			continue
		}
		if !si.serveConn(c) {
			return
		}
	}
}

func (si *SocketInput) sendPerfStats() {
	ticker := time.NewTicker(perfStatsSendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-si.StopChan:
			return
		case <-ticker.C:
			if si.StatsEncoder != nil {
				si.PerfStats.SocketQueueLength = uint64(len(si.EventChan))
				si.StatsEncoder.Submit(si.PerfStats)
			}
		}
	}
}

// MakeSocketInput returns a new SocketInput listening on the Unix socket
// inputSocket and writing parsed events to outChan. If bufDrop is set, events
// are dropped instead of blocking when outChan is full.
func MakeSocketInput(inputSocket string,
	outChan chan types.Entry, bufDrop bool) (*SocketInput, error) {
	addr, err := net.ResolveUnixAddr("unix", inputSocket)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, err
	}
	return &SocketInput{
		EventChan:         outChan,
		InputListener:     ln,
		StopChan:          make(chan bool),
		DropIfChannelFull: bufDrop,
		Logger: log.WithFields(log.Fields{
			"domain": "input",
			"input":  "socket",
			"path":   inputSocket,
		}),
	}, nil
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (si *SocketInput) SubmitStats(sc *util.PerformanceStatsEncoder) {
	si.StatsEncoder = sc
}

// Run starts the SocketInput
func (si *SocketInput) Run() {
	if !si.Running {
		si.Running = true
		si.StopChan = make(chan bool)
		si.StoppedChan = make(chan bool)
		go si.handleServerConnection()
		go si.sendPerfStats()
	}
}

// Stop causes the SocketInput to stop reading from the socket. The passed
// channel is closed once the listener is shut down.
func (si *SocketInput) Stop(stoppedChan chan bool) {
	if !si.Running {
		close(stoppedChan)
		return
	}
	close(si.StopChan)
	<-si.StoppedChan
	si.Running = false
	close(stoppedChan)
}

// SetVerbose sets the input's verbosity level
func (si *SocketInput) SetVerbose(verbose bool) {
	si.Verbose = verbose
}
