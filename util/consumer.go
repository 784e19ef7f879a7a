package util

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"fmt"

	"github.com/NeowayLabs/wabbit"
	"github.com/NeowayLabs/wabbit/amqptest"
	log "github.com/sirupsen/logrus"
)

// Consumer receives messages from an amqptest fake broker. It is used to
// observe submitted metrics in tests.
type Consumer struct {
	conn     wabbit.Conn
	channel  wabbit.Channel
	tag      string
	done     chan error
	Callback func(wabbit.Delivery)
	Logger   *log.Entry
}

// NewConsumer connects to the fake broker at amqpURI, binds queueName to
// exchange using key and starts calling callback for each delivery.
func NewConsumer(amqpURI, exchange, exchangeType, queueName, key, ctag string, callback func(wabbit.Delivery)) (*Consumer, error) {
	var err error
	c := &Consumer{
		tag:      ctag,
		done:     make(chan error),
		Callback: callback,
		Logger: log.WithFields(log.Fields{
			"domain":   "consumer",
			"exchange": exchange,
			"queue":    queueName,
		}),
	}

	if c.conn, err = amqptest.Dial(amqpURI); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if c.channel, err = c.conn.Channel(); err != nil {
		return nil, fmt.Errorf("channel: %w", err)
	}
	durable := wabbit.Option{
		"durable":  true,
		"delete":   false,
		"internal": false,
		"noWait":   false,
	}
	if err = c.channel.ExchangeDeclare(exchange, exchangeType, durable); err != nil {
		return nil, fmt.Errorf("exchange declare: %w", err)
	}
	queue, err := c.channel.QueueDeclare(queueName, wabbit.Option{
		"durable":   true,
		"delete":    false,
		"exclusive": false,
		"noWait":    false,
	})
	if err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	err = c.channel.QueueBind(queue.Name(), key, exchange, wabbit.Option{"noWait": false})
	if err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	deliveries, err := c.channel.Consume(queue.Name(), c.tag, wabbit.Option{
		"exclusive": false,
		"noLocal":   false,
		"noWait":    false,
	})
	if err != nil {
		return nil, fmt.Errorf("queue consume: %w", err)
	}
	c.Logger.WithField("tag", c.tag).Debug("consuming")
	go c.handle(deliveries)

	return c, nil
}

func (c *Consumer) handle(deliveries <-chan wabbit.Delivery) {
	for d := range deliveries {
		c.Logger.WithField("size", len(d.Body())).Debug("delivery")
		c.Callback(d)
		d.Ack(false)
	}
	c.done <- nil
}

// Shutdown closes the channel and connection and waits for the delivery loop
// to end.
func (c *Consumer) Shutdown() error {
	if err := c.channel.Close(); err != nil {
		return fmt.Errorf("channel close: %w", err)
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("connection close: %w", err)
	}
	return <-c.done
}
