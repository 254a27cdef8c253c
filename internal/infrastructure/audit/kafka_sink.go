package audit

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes records to a topic keyed by event id so one event's
// records stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if len(brokers) == 0 {
		return nil, crerr.New("audit kafka brokers are required")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, crerr.New("audit kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		Compression:            kafka.Zstd,
		AllowAutoTopicCreation: true,
	}
	return newKafkaSink(writer, topic), nil
}

func newKafkaSink(writer messageWriter, topic string) *KafkaSink {
	return &KafkaSink{writer: writer, topic: topic}
}

func (s *KafkaSink) Write(ctx context.Context, record audit.Record) error {
	payload, err := sonic.Marshal(record)
	if err != nil {
		return crerr.Wrapf(err, "encode audit record action=%s", record.Action)
	}

	msg := kafka.Message{
		Key:   []byte(record.EventID),
		Value: payload,
		Time:  record.OccurredAt,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(record.Action)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return crerr.Wrapf(err, "publish audit record topic=%s event_id=%s", s.topic, record.EventID)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	if err := s.writer.Close(); err != nil {
		return crerr.Wrap(err, "close audit kafka writer")
	}
	return nil
}
