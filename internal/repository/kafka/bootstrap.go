package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Topics are normally created by cmd/kafka-init. The bootstrap helpers make
// a best effort on their own so a single-node dev setup works without it.
func bootstrapTopic(ctx context.Context, brokers []string, topic string, logger *zap.Logger) {
	err := EnsureTopic(ctx, brokers, TopicSpec{Name: topic, MaxWait: 5 * time.Second}, logger)
	if err != nil && logger != nil {
		logger.Warn("topic bootstrap skipped", zap.String("topic", topic), zap.Error(err))
	}
}

func BootstrapConsumer(ctx context.Context, cfg *ConsumerConfig, logger *zap.Logger) *Consumer {
	bootstrapTopic(ctx, cfg.Brokers, cfg.Topic, logger)
	return NewConsumer(cfg)
}

func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	bootstrapTopic(ctx, brokers, topic, logger)
	return NewProducer(brokers, topic).WithLogger(logger)
}
