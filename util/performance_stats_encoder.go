package util

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/DCSO/fluxline"
	log "github.com/sirupsen/logrus"
)

// DefaultStatsDatabase is the InfluxDB database metrics are addressed to.
const DefaultStatsDatabase = "telegraf"

// PerformanceStatsEncoder encodes structs carrying `influx` field tags into
// InfluxDB line protocol and hands the lines to a StatsSubmitter.
type PerformanceStatsEncoder struct {
	sync.Mutex
	Encoder       *fluxline.Encoder
	Buffer        bytes.Buffer
	Logger        *log.Entry
	Tags          map[string]string
	Database      string
	Submitter     StatsSubmitter
	SubmitPeriod  time.Duration
	LastSubmitted time.Time
	DummyMode     bool
}

// MakePerformanceStatsEncoder creates a new stats encoder submitting via
// statsSubmitter. Components use submitPeriod as the interval between their
// submissions. In dummyMode encoded lines are only logged.
func MakePerformanceStatsEncoder(statsSubmitter StatsSubmitter,
	submitPeriod time.Duration, dummyMode bool) *PerformanceStatsEncoder {
	a := &PerformanceStatsEncoder{
		Logger: log.WithFields(log.Fields{
			"domain": "statscollect",
		}),
		Submitter:     statsSubmitter,
		DummyMode:     dummyMode,
		Database:      DefaultStatsDatabase,
		Tags:          make(map[string]string),
		LastSubmitted: time.Now(),
		SubmitPeriod:  submitPeriod,
	}
	a.Encoder = fluxline.NewEncoder(&a.Buffer)
	return a
}

// SetTag adds a tag to all subsequently encoded lines.
func (a *PerformanceStatsEncoder) SetTag(key, value string) {
	a.Lock()
	defer a.Unlock()
	a.Tags[key] = value
}

// TagSensor tags all subsequently encoded lines with this machine's sensor ID.
func (a *PerformanceStatsEncoder) TagSensor() error {
	sensorID, err := GetSensorID()
	if err != nil {
		return err
	}
	a.SetTag("sensor", sensorID)
	return nil
}

// Submit encodes the influx-tagged fields of val and sends the resulting line
// to the configured submitter. Values without tagged fields are skipped.
func (a *PerformanceStatsEncoder) Submit(val interface{}) {
	a.Lock()
	defer a.Unlock()

	a.Buffer.Reset()
	if err := a.Encoder.EncodeWithoutTypes(ToolName, val, a.Tags); err != nil {
		a.Logger.WithError(err).Warn("encoding stats")
	}
	line := strings.TrimSpace(a.Buffer.String())
	if line == "" {
		a.Logger.Warn("skipping empty influx line")
		return
	}
	a.LastSubmitted = time.Now()
	if a.DummyMode {
		a.Logger.WithField("line", line).Info("stats")
		return
	}
	a.Submitter.SubmitWithHeaders([]byte(line), "", "text/plain", map[string]string{
		"database":         a.Database,
		"retention_policy": "default",
	})
}
