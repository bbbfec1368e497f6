package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/bankcore/transfer-service/internal/biz"
	"github.com/bankcore/transfer-service/internal/conf"
	"github.com/bankcore/transfer-service/pkg/rocketmq"
)

// defaultTransferTopic is used when the config does not name a topic.
const defaultTransferTopic = "transfer_completed"

// transferCompletedTag marks transfer.completed messages for consumer
// side filtering.
const transferCompletedTag = "transfer.completed"

type transferEventPublisher struct {
	producer *rocketmq.Producer
	topic    string
	log      *log.Helper
}

// NewTransferEventPublisher creates a RocketMQ-backed publisher for
// transfer lifecycle events and returns a cleanup function.
func NewTransferEventPublisher(c *conf.RocketMQ, logger log.Logger) (biz.TransferEventPublisher, func(), error) {
	topic := c.TransferTopic
	if topic == "" {
		topic = defaultTransferTopic
	}

	producer, cleanup, err := rocketmq.NewProducer(rocketmq.NewConfigFromConf(c), []string{topic}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create transfer event producer: %w", err)
	}

	return &transferEventPublisher{
		producer: producer,
		topic:    topic,
		log:      log.NewHelper(log.With(logger, "module", "data/event")),
	}, cleanup, nil
}

// PublishTransferCompleted sends the event as a tagged JSON message,
// keyed by the two account names for broker-side lookup.
func (p *transferEventPublisher) PublishTransferCompleted(ctx context.Context, evt *biz.TransferCompletedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal transfer event: %w", err)
	}

	receipt, err := p.producer.SendMessage(ctx, &rocketmq.Message{
		Topic: p.topic,
		Body:  body,
		Keys:  []string{evt.Source, evt.Destination},
		Tag:   transferCompletedTag,
	})
	if err != nil {
		return err
	}

	p.log.WithContext(ctx).Debugf("published transfer.completed msgId=%s", receipt.MessageID)
	return nil
}
