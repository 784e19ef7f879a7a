package input

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/DCSO/rdnscache/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines []string) {
	c, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer c.Close()
	for _, l := range lines {
		_, err = fmt.Fprintln(c, l)
		require.NoError(t, err)
	}
}

func TestSocketInput(t *testing.T) {
	tmpfn := filepath.Join(t.TempDir(), fmt.Sprintf("t%d", rand.Int63()))

	evChan := make(chan types.Entry)
	events := make([]string, 1000)
	for i := range events {
		events[i] = makeEveEvent([]string{"http", "dns", "flow"}[rand.Intn(3)], i)
	}

	is, err := MakeSocketInput(tmpfn, evChan, false)
	require.NoError(t, err)
	is.Run()

	go writeLines(t, tmpfn, append([]string{`{"event_type":"dns","src_port":"foo"}`}, events...))

	coll := make([]types.Entry, 0, len(events))
	for range events {
		coll = append(coll, <-evChan)
	}
	ch := make(chan bool)
	is.Stop(ch)
	<-ch

	require.Len(t, coll, 1000)
	for i := range events {
		var checkEvent types.EveEvent
		require.NoError(t, json.Unmarshal([]byte(events[i]), &checkEvent))
		assert.Equal(t, checkEvent.EventType, coll[i].EventType, "event %d", i)
		assert.Equal(t, checkEvent.SrcIP, coll[i].SrcIP, "event %d", i)
	}
	assert.Equal(t, uint64(1), is.PerfStats.SocketParseErrors)
}

func TestSocketInputDrop(t *testing.T) {
	tmpfn := filepath.Join(t.TempDir(), "drop.sock")

	evChan := make(chan types.Entry, 5)
	is, err := MakeSocketInput(tmpfn, evChan, true)
	require.NoError(t, err)
	is.Run()

	lines := make([]string, 20)
	for i := range lines {
		lines[i] = makeEveEvent("flow", i)
	}
	writeLines(t, tmpfn, lines)

	assert.Eventually(t, func() bool {
		return len(evChan) == 5 && is.PerfStats.SocketQueueDropped == 15
	}, 5*time.Second, 10*time.Millisecond)

	ch := make(chan bool)
	is.Stop(ch)
	<-ch
}

func TestSocketInputStopIdle(t *testing.T) {
	tmpfn := filepath.Join(t.TempDir(), "idle.sock")
	is, err := MakeSocketInput(tmpfn, make(chan types.Entry), false)
	require.NoError(t, err)
	is.Run()
	ch := make(chan bool)
	is.Stop(ch)
	<-ch
	assert.False(t, is.Running)
}
