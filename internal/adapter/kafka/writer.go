package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/ufo-sightings-etl/internal/config"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// defaultBatchSize bounds a single WriteMessages call when BATCH_SIZE is unset.
const defaultBatchSize = 50

// Writer publishes cleaned sightings to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer    *kafkago.Writer
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Writer{writer: w, batchSize: batchSize, logger: logger}
}

// Load serializes and publishes every cleaned record. Keys are derived from
// record content, so republishing a run yields the same keys.
func (w *Writer) Load(ctx context.Context, ds domain.Dataset) error {
	if len(ds.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Records))
	for i := range ds.Records {
		msg, err := serializeToMessage(ds.Records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	for start := 0; start < len(msgs); start += w.batchSize {
		end := min(start+w.batchSize, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("publish sightings %d-%d: %w", start, end, err)
		}
	}
	w.logger.Info("sightings published", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CleanRecord into a Kafka message.
func serializeToMessage(r domain.CleanRecord) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sighting: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(recordKey(r)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "shape", Value: []byte(r.Shape)},
			{Key: "mufon_report", Value: []byte(strconv.FormatBool(r.MUFONReport))},
		},
	}, nil
}

// recordKey hashes the fields that identify a report.
func recordKey(r domain.CleanRecord) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s",
		r.Timestamp.Format("2006-01-02T15:04:05"), r.City, r.State, r.Country, r.Summary)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
