package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flood-crcl-service/internal/config"
	"github.com/couchcryptid/flood-crcl-service/internal/report"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes metric reports to Kafka.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer. The topic is chosen per message, so one
// writer serves every report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a report and writes it to topic.
func (w *Writer) Publish(ctx context.Context, topic string, r report.MetricReport) error {
	msg, err := serializeToMessage(topic, r)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s report to %s: %w", r.Kind, topic, err)
	}
	w.logger.Debug("report published", "topic", topic, "kind", r.Kind, "msg_identifier", r.Header.MsgIdentifier)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a MetricReport into a Kafka message keyed by
// its message identifier.
func serializeToMessage(topic string, r report.MetricReport) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize metric report: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(r.Header.MsgIdentifier),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_kind", Value: []byte(r.Kind)},
			{Key: "sent_at", Value: []byte(r.Header.SentUTC)},
		},
	}, nil
}
