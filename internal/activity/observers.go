package activity

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("activity")}
}

func (o *LogObserver) Name() string { return "log" }

func (o *LogObserver) Update(_ context.Context, event Event) error {
	o.logger.Info("activity",
		zap.String("id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Uint64("actor_id", event.ActorID),
		zap.Uint64("target_user_id", event.TargetUserID),
		zap.Uint64("gallery_id", event.GalleryID),
		zap.Uint64("comment_id", event.CommentID),
	)
	return nil
}

// MessageWriter is the part of *kafka.Writer the Kafka observer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaObserver publishes events as JSON keyed by actor id, so one user's
// events stay ordered within a partition.
type KafkaObserver struct {
	writer MessageWriter
}

func NewKafkaObserver(writer MessageWriter) *KafkaObserver {
	return &KafkaObserver{writer: writer}
}

func (o *KafkaObserver) Name() string { return "kafka" }

func (o *KafkaObserver) Update(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return o.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(event.ActorID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
}

func (o *KafkaObserver) Close() error {
	return o.writer.Close()
}

type MetricsObserver struct {
	events *prometheus.CounterVec
}

// NewMetricsObserver counts events by type on a vec labelled "type".
func NewMetricsObserver(events *prometheus.CounterVec) *MetricsObserver {
	return &MetricsObserver{events: events}
}

func (o *MetricsObserver) Name() string { return "metrics" }

func (o *MetricsObserver) Update(_ context.Context, event Event) error {
	o.events.WithLabelValues(string(event.Type)).Inc()
	return nil
}
