package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"SignalScan/pkg/logger"
)

// MessageHandler handles messages from one topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics in a consumer group and hands messages
// to a worker pool. Offsets are committed after a successful handle, or
// after the message was parked in the DLQ.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	msgs     chan kafka.Message
	dlq      *kafka.Writer
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "signalscan",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := &Consumer{
		cfg:      cfg,
		log:      log.With("kafka-consumer"),
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
		msgs:     make(chan kafka.Message, cfg.BufferSize),
		stop:     make(chan struct{}),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	initConsumerMetrics()
	return c, nil
}

// RegisterHandler must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}
	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	for topic, r := range c.readers {
		c.wg.Add(1)
		go c.read(topic, r)
	}
	c.log.Info("consumer started", logger.Int("topics", len(c.readers)), logger.Int("workers", c.cfg.WorkerCount))
	return nil
}

// Stop closes the readers and waits for in-flight messages.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Warn("close reader", logger.String("topic", topic), logger.Error(cerr))
			}
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("wait for consumer: %w", ctx.Err())
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return err
}

func (c *Consumer) read(topic string, r *kafka.Reader) {
	defer c.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.stop
		cancel()
	}()
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			c.log.Warn("fetch message", logger.String("topic", topic), logger.Error(err))
			continue
		}
		select {
		case c.msgs <- m:
			consumerDepth.WithLabelValues(topic).Set(float64(len(c.msgs)))
		case <-c.stop:
			return
		}
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case m := <-c.msgs:
			c.process(m)
		}
	}
}

func (c *Consumer) process(m kafka.Message) {
	h, ok := c.handlers[m.Topic]
	if !ok {
		return
	}
	start := time.Now()
	err := c.handleWithRetry(h, m.Value)
	observeHandle(m.Topic, time.Since(start), err)

	if err != nil {
		c.log.Error("handle message", logger.String("topic", m.Topic), logger.Error(err))
		if c.dlq == nil {
			return
		}
		werr := c.dlq.WriteMessages(context.Background(), kafka.Message{
			Topic:   c.cfg.DLQTopic,
			Key:     m.Key,
			Value:   m.Value,
			Headers: []kafka.Header{{Key: "source_topic", Value: []byte(m.Topic)}},
		})
		if werr != nil {
			c.log.Error("write dlq", logger.String("topic", c.cfg.DLQTopic), logger.Error(werr))
			return
		}
	}
	if r := c.readers[m.Topic]; r != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if cerr := r.CommitMessages(ctx, m); cerr != nil {
			c.log.Warn("commit offset", logger.String("topic", m.Topic), logger.Error(cerr))
		}
		cancel()
	}
}

func (c *Consumer) handleWithRetry(h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	for attempt := 1; ; attempt++ {
		err = h.Handle(context.Background(), data)
		if err == nil || attempt > c.cfg.RetryMax {
			return err
		}
		select {
		case <-time.After(backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-c.stop:
			return err
		}
	}
}

// backoffWithJitter doubles from min per attempt, capped at max, minus up
// to half as jitter.
func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 32 {
		if d := min << uint(attempt-1); d > 0 && d < max {
			exp = d
		}
	}
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int64N(half))
}
