package input

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

// DefaultRedisKey is the Redis list Suricata pushes EVE events to by default.
const DefaultRedisKey = "suricata"

var perfStatsSendInterval = 10 * time.Second
var backOffTime = 500 * time.Millisecond

// RedisInputPerfStats contains performance stats written to InfluxDB
// for monitoring.
type RedisInputPerfStats struct {
	RedisQueueLength uint64 `influx:"redis_queue_length"`
}

// RedisInput is an Input reading JSON EVE input from Redis list.
type RedisInput struct {
	EventChan     chan types.Entry
	Verbose       bool
	Running       bool
	Pool          *redis.Pool
	StopChan      chan bool
	StoppedChan   chan bool
	Addr          string
	Proto         string
	Key           string
	ParseWorkers  int
	BatchSize     int
	PerfStats     RedisInputPerfStats
	StatsEncoder  *util.PerformanceStatsEncoder
	UsePipelining bool
	Logger        *log.Entry
}

// GetName returns a printable name for the input
func (ri *RedisInput) GetName() string {
	return "Redis input"
}

func (ri *RedisInput) doParseJSON(inchan chan []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	for v := range inchan {
		e, err := util.ParseJSON(v)
		if err != nil {
			ri.Logger.WithError(err).Warn("invalid input item")
			continue
		}
		select {
		case ri.EventChan <- e:
		case <-ri.StopChan:
		}
	}
}

// popBatch pops up to BatchSize items in a single MULTI/EXEC transaction.
func (ri *RedisInput) popBatch() ([][]byte, error) {
	conn := ri.Pool.Get()
	defer conn.Close()

	if err := conn.Send("MULTI"); err != nil {
		return nil, err
	}
	for i := 0; i < ri.BatchSize; i++ {
		if err := conn.Send("RPOP", ri.Key); err != nil {
			return nil, err
		}
	}
	vals, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		return nil, err
	}
	items := make([][]byte, 0, len(vals))
	for _, v := range vals {
		b, ok := v.([]byte)
		if !ok {
			// list drained
			break
		}
		items = append(items, b)
	}
	return items, nil
}

// backOff sleeps for backOffTime, returning false if stopChan was closed in
// the meantime.
func backOff(stopChan chan bool) bool {
	select {
	case <-stopChan:
		return false
	case <-time.After(backOffTime):
		return true
	}
}

func (ri *RedisInput) popPipeline(wg *sync.WaitGroup, stopChan chan bool,
	parseChan chan []byte) {
	defer wg.Done()
	failing := false
	for {
		select {
		case <-stopChan:
			return
		default:
		}
		items, err := ri.popBatch()
		if err != nil {
			if !failing {
				ri.Logger.WithError(err).WithField("backoff", backOffTime).Warn("popping batch failed, suppressing further warnings")
				failing = true
			}
			if !backOff(stopChan) {
				return
			}
			continue
		}
		if failing {
			failing = false
			ri.Logger.Info("popping batches succeeded again")
		}
		if len(items) == 0 {
			if !backOff(stopChan) {
				return
			}
			continue
		}
		for _, item := range items {
			select {
			case parseChan <- item:
			case <-stopChan:
				return
			}
		}
	}
}

func (ri *RedisInput) noPipePop(wg *sync.WaitGroup, stopChan chan bool,
	parseChan chan []byte) {
	defer wg.Done()
	conn := ri.Pool.Get()
	defer func() {
		conn.Close()
	}()
	for {
		select {
		case <-stopChan:
			return
		default:
		}
		vals, err := redis.ByteSlices(conn.Do("BRPOP", ri.Key, "1"))
		if err == nil && len(vals) > 1 {
			select {
			case parseChan <- vals[1]:
			case <-stopChan:
				return
			}
			continue
		}
		if err != nil && !errors.Is(err, redis.ErrNil) {
			if err != io.EOF {
				ri.Logger.WithError(err).Warn("BRPOP failed")
			}
			if !backOff(stopChan) {
				return
			}
			conn.Close()
			conn = ri.Pool.Get()
		}
	}
}

func (ri *RedisInput) handleServerConnection() {
	var wg sync.WaitGroup
	var parsewg sync.WaitGroup
	parseChan := make(chan []byte)
	pipelineStopChan := make(chan bool)

	for i := 0; i < ri.ParseWorkers; i++ {
		parsewg.Add(1)
		go ri.doParseJSON(parseChan, &parsewg)
	}

	poppers := 1
	pop := ri.popPipeline
	if !ri.UsePipelining {
		ri.Logger.Info("not using Redis pipelining")
		poppers = 3
		pop = ri.noPipePop
	}
	for i := 0; i < poppers; i++ {
		wg.Add(1)
		go pop(&wg, pipelineStopChan, parseChan)
	}
	wg.Add(1)
	go ri.sendPerfStats(&wg, pipelineStopChan)

	<-ri.StopChan
	close(pipelineStopChan)
	wg.Wait()
	close(parseChan)
	parsewg.Wait()
	close(ri.StoppedChan)
}

func (ri *RedisInput) sendPerfStats(wg *sync.WaitGroup, stopChan chan bool) {
	defer wg.Done()
	ticker := time.NewTicker(perfStatsSendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			if ri.StatsEncoder == nil {
				continue
			}
			conn := ri.Pool.Get()
			l, err := redis.Uint64(conn.Do("LLEN", ri.Key))
			conn.Close()
			if err != nil {
				if err != io.EOF {
					ri.Logger.WithError(err).Warn("error retrieving Redis list length")
				}
				continue
			}
			ri.PerfStats.RedisQueueLength = l
			ri.StatsEncoder.Submit(ri.PerfStats)
		}
	}
}

func makeRedisInput(proto, addr, key string, outChan chan types.Entry, batchSize int) *RedisInput {
	if key == "" {
		key = DefaultRedisKey
	}
	ri := &RedisInput{
		EventChan:    outChan,
		Verbose:      false,
		StopChan:     make(chan bool),
		Addr:         addr,
		Proto:        proto,
		Key:          key,
		ParseWorkers: 3,
		BatchSize:    batchSize,
		Logger: log.WithFields(log.Fields{
			"domain": "input",
			"input":  "redis",
		}),
	}
	ri.Pool = &redis.Pool{
		MaxIdle:     5,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			c, err := redis.Dial(proto, addr)
			ri.Logger.WithFields(log.Fields{
				"addr":    addr,
				"success": err == nil,
			}).Info("dialing Redis")
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			_, err := c.Do("PING")
			return err
		},
	}
	return ri
}

// MakeRedisInput returns a new RedisInput, where the string parameter denotes a
// hostname:port combination. Events are popped from the list named key.
func MakeRedisInput(addr, key string, outChan chan types.Entry, batchSize int) (*RedisInput, error) {
	return makeRedisInput("tcp", addr, key, outChan, batchSize), nil
}

// MakeRedisInputSocket returns a new RedisInput, where string parameter
// denotes a socket. Events are popped from the list named key.
func MakeRedisInputSocket(addr, key string, outChan chan types.Entry, batchSize int) (*RedisInput, error) {
	return makeRedisInput("unix", addr, key, outChan, batchSize), nil
}

// SubmitStats registers a PerformanceStatsEncoder for runtime stats submission.
func (ri *RedisInput) SubmitStats(sc *util.PerformanceStatsEncoder) {
	ri.StatsEncoder = sc
}

// Run starts the RedisInput
func (ri *RedisInput) Run() {
	if !ri.Running {
		ri.Running = true
		ri.StopChan = make(chan bool)
		go ri.handleServerConnection()
	}
}

// Stop causes the RedisInput to stop reading from the Redis list and close all
// associated channels, including the passed notification channel.
func (ri *RedisInput) Stop(stoppedChan chan bool) {
	if ri.Running {
		ri.StoppedChan = stoppedChan
		close(ri.StopChan)
		ri.Running = false
		<-stoppedChan
		ri.Pool.Close()
	}
}

// SetVerbose sets the input's verbosity level
func (ri *RedisInput) SetVerbose(verbose bool) {
	ri.Verbose = verbose
}
