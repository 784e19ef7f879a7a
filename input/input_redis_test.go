package input

// DCSO rdnscache
// Copyright (c) 2017, 2019, 2026, DCSO GmbH

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/DCSO/rdnscache/types"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stvp/tempredis"
)

const nofRedisTests = 10000

func makeEveEvent(etype string, number int) string {
	eve := types.EveEvent{
		EventType: etype,
		FlowID:    int64(number),
		SrcIP:     fmt.Sprintf("10.0.%d.%d", number/256%256, number%256),
		SrcPort:   []int{11, 12, 13, 14, 15}[rand.Intn(5)],
		DestIP:    fmt.Sprintf("10.0.0.%d", rand.Intn(50)),
		DestPort:  []int{11, 12, 13, 14, 15}[rand.Intn(5)],
		Proto:     []string{"TCP", "UDP"}[rand.Intn(2)],
	}
	json, err := json.Marshal(eve)
	if err != nil {
		panic(err)
	}
	return string(json)
}

func flowID(t *testing.T, e types.Entry) int64 {
	var ev types.EveEvent
	require.NoError(t, json.Unmarshal([]byte(e.JSONLine), &ev))
	return ev.FlowID
}

func startRedis(t *testing.T, sock string) *tempredis.Server {
	s, err := tempredis.Start(tempredis.Config{
		"unixsocket": sock,
	})
	require.NoError(t, err)
	return s
}

func pushEvents(t *testing.T, s *tempredis.Server, key string) []string {
	client, err := redis.Dial("unix", s.Socket())
	require.NoError(t, err)
	defer client.Close()

	events := make([]string, nofRedisTests)
	for i := range events {
		events[i] = makeEveEvent([]string{"http", "dns", "flow"}[rand.Intn(3)], i)
		_, err = client.Do("LPUSH", key, events[i])
		require.NoError(t, err)
	}
	return events
}

func collectEvents(t *testing.T, evChan chan types.Entry, n int) []types.Entry {
	coll := make([]types.Entry, 0, n)
	timeout := time.After(60 * time.Second)
	for len(coll) < n {
		select {
		case e := <-evChan:
			coll = append(coll, e)
		case <-timeout:
			t.Fatalf("timeout after %d of %d events", len(coll), n)
		}
	}
	return coll
}

func checkEvents(t *testing.T, events []string, coll []types.Entry) {
	require.Len(t, coll, len(events))
	sort.Slice(coll, func(i, j int) bool {
		return flowID(t, coll[i]) < flowID(t, coll[j])
	})
	for i := range events {
		var checkEvent types.EveEvent
		require.NoError(t, json.Unmarshal([]byte(events[i]), &checkEvent))
		require.Equal(t, checkEvent.EventType, coll[i].EventType, "event %d", i)
		require.Equal(t, checkEvent.SrcIP, coll[i].SrcIP, "event %d", i)
	}
}

func stopRedisInput(ri *RedisInput) {
	stopChan := make(chan bool)
	ri.Stop(stopChan)
	<-stopChan
}

func TestRedisInput(t *testing.T) {
	for _, tc := range []struct {
		name       string
		pipelining bool
		key        string
	}{
		{"withPipe", true, DefaultRedisKey},
		{"noPipe", false, DefaultRedisKey},
		{"customKey", true, "eve"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := startRedis(t, filepath.Join(t.TempDir(), tc.name+".sock"))
			defer s.Term()
			events := pushEvents(t, s, tc.key)

			evChan := make(chan types.Entry)
			ri, err := MakeRedisInputSocket(s.Socket(), tc.key, evChan, 500)
			require.NoError(t, err)
			ri.UsePipelining = tc.pipelining
			ri.Run()

			coll := collectEvents(t, evChan, nofRedisTests)
			stopRedisInput(ri)
			checkEvents(t, events, coll)
		})
	}
}

func TestRedisInputDefaultKey(t *testing.T) {
	ri, err := MakeRedisInputSocket("/nonexistent.sock", "", make(chan types.Entry), 10)
	require.NoError(t, err)
	assert.Equal(t, DefaultRedisKey, ri.Key)
}

// The input must pick up again after the server was restarted.
func TestRedisGone(t *testing.T) {
	for _, pipelining := range []bool{true, false} {
		t.Run(fmt.Sprintf("pipelining=%v", pipelining), func(t *testing.T) {
			sock := filepath.Join(t.TempDir(), "gone.sock")
			s := startRedis(t, sock)

			evChan := make(chan types.Entry)
			ri, err := MakeRedisInputSocket(s.Socket(), "", evChan, 500)
			require.NoError(t, err)
			ri.UsePipelining = pipelining
			ri.Run()

			time.Sleep(2 * time.Second)
			s.Term()
			s = startRedis(t, sock)
			defer s.Term()

			var events []string
			done := make(chan bool)
			go func() {
				events = pushEvents(t, s, DefaultRedisKey)
				close(done)
			}()
			coll := collectEvents(t, evChan, nofRedisTests)
			<-done
			stopRedisInput(ri)
			checkEvents(t, events, coll)
		})
	}
}
