package util

// DCSO rdnscache
// Copyright (c) 2017, 2018, 2026, DCSO GmbH

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"sync"
	"time"

	"github.com/NeowayLabs/wabbit"
	"github.com/NeowayLabs/wabbit/amqp"
	origamqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const amqpReconnDelay = 2 * time.Second

// AMQPDialer opens a connection to the broker at the given URL and returns it
// together with the exchange type to declare.
type AMQPDialer func(url string) (wabbit.Conn, string, error)

// AMQPSubmitter is a StatsSubmitter publishing metrics to a RabbitMQ
// exchange. Lost connections are reestablished in the background.
type AMQPSubmitter struct {
	URL      string
	Target   string
	SensorID string
	Verbose  bool
	Compress bool
	Logger   *log.Entry
	Dialer   AMQPDialer

	Conn    wabbit.Conn
	Channel wabbit.Channel
	// ChanMutex is held while publishing and while reconnecting.
	ChanMutex sync.Mutex
	ConnMutex sync.Mutex

	closeNotify chan wabbit.Error
	stop        chan bool
}

func dialAMQP(url string) (wabbit.Conn, string, error) {
	conn, err := amqp.Dial(url)
	return conn, "fanout", err
}

func (s *AMQPSubmitter) connect() error {
	s.ConnMutex.Lock()
	defer s.ConnMutex.Unlock()

	conn, exchangeType, err := s.Dialer(s.URL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(s.Target, exchangeType, wabbit.Option{
		"durable":    true,
		"autoDelete": false,
		"internal":   false,
		"noWait":     false,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", s.Target, err)
	}
	s.Conn, s.Channel = conn, ch
	s.closeNotify = make(chan wabbit.Error)
	s.Conn.NotifyClose(s.closeNotify)
	s.Logger.WithField("url", s.URL).Debug("connection established")
	return nil
}

func (s *AMQPSubmitter) watch() {
	for {
		s.ConnMutex.Lock()
		notify := s.closeNotify
		s.ConnMutex.Unlock()

		select {
		case <-s.stop:
			return
		case amqpErr := <-notify:
			if amqpErr == nil {
				// closed on purpose
				return
			}
			s.Logger.WithField("reason", amqpErr.Reason()).Warn("connection lost")
			s.ChanMutex.Lock()
			s.reconnect()
			s.ChanMutex.Unlock()
		}
	}
}

func (s *AMQPSubmitter) reconnect() {
	for {
		select {
		case <-s.stop:
			return
		case <-time.After(amqpReconnDelay):
		}
		if err := s.connect(); err != nil {
			s.Logger.WithError(err).Warn("reconnect failed")
			continue
		}
		s.Logger.WithField("url", s.URL).Info("connection reestablished")
		return
	}
}

// MakeAMQPSubmitterWithReconnector creates a new submitter publishing to the
// exchange target on the broker at url, obtaining connections via dialer.
func MakeAMQPSubmitterWithReconnector(url string, target string, verbose bool,
	dialer func(string) (wabbit.Conn, string, error)) (*AMQPSubmitter, error) {
	sensorID, err := GetSensorID()
	if err != nil {
		return nil, err
	}
	s := &AMQPSubmitter{
		URL:      url,
		Target:   target,
		SensorID: sensorID,
		Verbose:  verbose,
		Dialer:   dialer,
		stop:     make(chan bool),
		Logger: log.WithFields(log.Fields{
			"domain":    "submitter",
			"submitter": "AMQP",
			"exchange":  target,
		}),
	}
	if err = s.connect(); err != nil {
		return nil, err
	}
	go s.watch()
	return s, nil
}

// MakeAMQPSubmitter creates a new submitter publishing to the exchange target
// on the RabbitMQ server at url.
func MakeAMQPSubmitter(url string, target string, verbose bool) (*AMQPSubmitter, error) {
	return MakeAMQPSubmitterWithReconnector(url, target, verbose, dialAMQP)
}

// UseCompression enables gzip compression of submitted payloads.
func (s *AMQPSubmitter) UseCompression() {
	s.Compress = true
}

func gzipPayload(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Submit publishes rawData with the given routing key.
func (s *AMQPSubmitter) Submit(rawData []byte, key string, contentType string) {
	s.SubmitWithHeaders(rawData, key, contentType, nil)
}

// SubmitWithHeaders publishes rawData with the given routing key, adding
// extraHeaders to the message headers.
func (s *AMQPSubmitter) SubmitWithHeaders(rawData []byte, key string, contentType string, extraHeaders map[string]string) {
	payload := rawData
	headers := origamqp.Table{
		"sensor_id":  s.SensorID,
		"compressed": "false",
	}
	option := wabbit.Option{
		"contentType": contentType,
		"headers":     headers,
	}
	if s.Compress {
		var err error
		if payload, err = gzipPayload(rawData); err != nil {
			s.Logger.WithError(err).Warn("compressing payload")
			return
		}
		headers["compressed"] = "true"
		option["contentEncoding"] = "gzip"
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}

	s.ChanMutex.Lock()
	err := s.Channel.Publish(s.Target, key, payload, option)
	s.ChanMutex.Unlock()
	if err != nil {
		s.Logger.WithError(err).Warn("submission failed")
		return
	}
	s.Logger.WithFields(log.Fields{
		"key":         key,
		"rawsize":     len(rawData),
		"payloadsize": len(payload),
	}).Debug("submission successful")
}

// Finish stops reconnection attempts and closes the connection.
func (s *AMQPSubmitter) Finish() {
	close(s.stop)
	if s.Verbose {
		s.Logger.Info("closing connection")
	}
	s.ConnMutex.Lock()
	defer s.ConnMutex.Unlock()
	if s.Channel != nil {
		s.Channel.Close()
	}
	if s.Conn != nil {
		s.Conn.Close()
	}
}
