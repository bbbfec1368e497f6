package rocketmq

import (
	"context"
	"fmt"
	"os"

	rmq "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/go-kratos/kratos/v2/log"
)

func init() {
	if err := os.Setenv("mq.consoleAppender.enabled", "true"); err != nil {
		panic(err)
	}
	rmq.ResetLogger()
}

// SendReceipt is the broker's acknowledgement of a sent message.
type SendReceipt struct {
	MessageID     string
	TransactionID string
	Offset        int64
}

// Message is an outbound message. Keys identify the message for lookup,
// Tag lets consumers filter.
type Message struct {
	Topic string
	Body  []byte
	Keys  []string
	Tag   string
}

func (m *Message) toRMQ() *rmq.Message {
	out := &rmq.Message{
		Topic: m.Topic,
		Body:  m.Body,
	}
	if len(m.Keys) > 0 {
		out.SetKeys(m.Keys...)
	}
	if m.Tag != "" {
		out.SetTag(m.Tag)
	}
	return out
}

// Producer wraps a RocketMQ v5 producer.
type Producer struct {
	client rmq.Producer
	log    *log.Helper
	cfg    *Config
}

// NewProducer starts a producer publishing to the given topics and
// returns it with a cleanup that stops it gracefully.
func NewProducer(cfg *Config, topics []string, logger log.Logger) (*Producer, func(), error) {
	logHelper := log.NewHelper(log.With(logger, "module", "pkg/rocketmq"))

	configureSSL(cfg.EnableSSL)

	opts := []rmq.ProducerOption{
		rmq.WithMaxAttempts(cfg.MaxAttempts),
	}
	if len(topics) > 0 {
		opts = append(opts, rmq.WithTopics(topics...))
	}

	client, err := rmq.NewProducer(cfg.ToRMQConfig(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create rocketmq producer: %w", err)
	}
	if err := client.Start(); err != nil {
		return nil, nil, fmt.Errorf("start rocketmq producer: %w", err)
	}

	logHelper.Infof("rocketmq producer started, endpoint=%s", cfg.Endpoint)

	cleanup := func() {
		logHelper.Info("shutting down rocketmq producer")
		if err := client.GracefulStop(); err != nil {
			logHelper.Errorf("shutdown rocketmq producer: %v", err)
		}
	}

	return &Producer{
		client: client,
		log:    logHelper,
		cfg:    cfg,
	}, cleanup, nil
}

// SendSync sends a bare message and discards the receipt.
func (p *Producer) SendSync(ctx context.Context, topic string, body []byte) error {
	_, err := p.send(ctx, (&Message{Topic: topic, Body: body}).toRMQ())
	return err
}

// SendMessage sends a message with keys and tag and returns the receipt.
func (p *Producer) SendMessage(ctx context.Context, msg *Message) (*SendReceipt, error) {
	return p.send(ctx, msg.toRMQ())
}

func (p *Producer) send(ctx context.Context, msg *rmq.Message) (*SendReceipt, error) {
	receipts, err := p.client.Send(ctx, msg)
	if err != nil {
		p.log.WithContext(ctx).Errorf("send to %s failed: %v", msg.Topic, err)
		return nil, fmt.Errorf("send message: %w", err)
	}
	if len(receipts) == 0 {
		return nil, fmt.Errorf("send message: no receipt returned")
	}

	r := receipts[0]
	p.log.WithContext(ctx).Debugf("sent to %s, msgId=%s", msg.Topic, r.MessageID)

	return &SendReceipt{
		MessageID:     r.MessageID,
		TransactionID: r.TransactionId,
		Offset:        r.Offset,
	}, nil
}
