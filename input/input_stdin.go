package input

// DCSO rdnscache
// Copyright (c) 2020, 2026, DCSO GmbH

import (
	"bufio"
	"io"
	"os"

	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	log "github.com/sirupsen/logrus"
)

// StdinInput is an Input reading JSON EVE input from standard input, or any
// other line-oriented reader.
type StdinInput struct {
	EventChan   chan types.Entry
	Reader      io.Reader
	Verbose     bool
	Running     bool
	StopChan    chan bool
	StoppedChan chan bool
	Logger      *log.Entry
}

// GetName returns a printable name for the input
func (si *StdinInput) GetName() string {
	return "Stdin input"
}

func (si *StdinInput) handleStdinStream() {
	scanner := bufio.NewScanner(si.Reader)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 32*1024*1024)
	for scanner.Scan() {
		json := scanner.Bytes()
		e, err := util.ParseJSON(json)
		if err != nil {
			si.Logger.Error(err, string(json[:]))
			continue
		}
		select {
		case si.EventChan <- e:
		case <-si.StopChan:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		si.Logger.Warn(err)
	}
	close(si.EventChan)
}

// MakeStdinInput returns a new StdinInput reading from stdin and writing
// parsed events to outChan. The output channel is closed when the input is
// exhausted.
func MakeStdinInput(outChan chan types.Entry) *StdinInput {
	return MakeReaderInput(os.Stdin, outChan)
}

// MakeReaderInput returns a new StdinInput reading from r instead of stdin.
func MakeReaderInput(r io.Reader, outChan chan types.Entry) *StdinInput {
	si := &StdinInput{
		EventChan: outChan,
		Reader:    r,
		Verbose:   false,
		StopChan:  make(chan bool),
		Logger: log.WithFields(log.Fields{
			"domain": "input",
			"input":  "stdin",
		}),
	}
	return si
}

// Run starts the StdinInput
func (si *StdinInput) Run() {
	if !si.Running {
		si.Running = true
		si.StopChan = make(chan bool)
		go si.handleStdinStream()
	}
}

// Stop causes the StdinInput to stop passing on events and closes the passed
// notification channel.
func (si *StdinInput) Stop(stoppedChan chan bool) {
	if si.Running {
		si.StoppedChan = stoppedChan
		si.Running = false
		close(si.StopChan)
	}
	close(stoppedChan)
}

// SetVerbose sets the input's verbosity level
func (si *StdinInput) SetVerbose(verbose bool) {
	si.Verbose = verbose
}
