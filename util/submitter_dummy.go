package util

// DCSO rdnscache
// Copyright (c) 2018, 2026, DCSO GmbH

import (
	"sync/atomic"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// DummySubmitter is a StatsSubmitter that logs submissions locally instead of
// sending them to a broker.
type DummySubmitter struct {
	Logger    *log.Entry
	SensorID  string
	Submitted uint64
}

func isASCIIPrintable(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// MakeDummySubmitter creates a new submitter logging to the default log
// target.
func MakeDummySubmitter() (*DummySubmitter, error) {
	sensorID, err := GetSensorID()
	if err != nil {
		return nil, err
	}
	return &DummySubmitter{
		SensorID: sensorID,
		Logger: log.WithFields(log.Fields{
			"domain":    "submitter",
			"submitter": "dummy",
		}),
	}, nil
}

// UseCompression is a no-op, payloads are always logged uncompressed.
func (s *DummySubmitter) UseCompression() {}

// Submit logs the rawData payload.
func (s *DummySubmitter) Submit(rawData []byte, key string, contentType string) {
	s.SubmitWithHeaders(rawData, key, contentType, nil)
}

// SubmitWithHeaders logs the rawData payload along with the headers.
func (s *DummySubmitter) SubmitWithHeaders(rawData []byte, key string, contentType string, myHeaders map[string]string) {
	atomic.AddUint64(&s.Submitted, 1)
	logger := s.Logger.WithFields(log.Fields{
		"key":          key,
		"content_type": contentType,
	})
	for k, v := range myHeaders {
		logger = logger.WithField("header_"+k, v)
	}
	payload := string(rawData)
	if isASCIIPrintable(payload) {
		logger.Info(payload)
		return
	}
	logger.WithField("size", len(rawData)).Info("non-printable payload")
}

// Finish is a no-op in this implementation.
func (s *DummySubmitter) Finish() {}
