// Package kafka publishes normalized telemetry records to a sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/oceanbight/buoy-telemetry-etl/internal/config"
	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
)

// Writer produces one message per telemetry record. It implements
// pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Store serializes every row of the result and publishes the batch in a
// single WriteMessages call.
func (w *Writer) Store(ctx context.Context, res *domain.Result) error {
	if res.NumRows == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, res.NumRows)
	for row := 0; row < res.NumRows; row++ {
		msg, err := recordToMessage(res, row)
		if err != nil {
			return err
		}
		msgs[row] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and closes the producer.
func (w *Writer) Close() error { return w.writer.Close() }

// recordToMessage marshals one result row into a Kafka message keyed by
// instrument, with the record timestamp in the key when present. JSON has no
// NaN, so sentinel floats serialize as null.
func recordToMessage(res *domain.Result, row int) (kafkago.Message, error) {
	doc := make(map[string]any, len(res.Columns)+1)
	doc["instrument"] = res.Instrument

	key := res.Instrument
	for _, c := range res.Columns {
		switch c.Type {
		case domain.TypeString:
			doc[c.Name] = c.Strings[row]
		case domain.TypeInt:
			doc[c.Name] = c.Ints[row]
		case domain.TypeFloat:
			if math.IsNaN(c.Floats[row]) {
				doc[c.Name] = nil
			} else {
				doc[c.Name] = c.Floats[row]
			}
		case domain.TypeDatetime:
			ts := c.Times[row].UTC().Format(time.RFC3339Nano)
			doc[c.Name] = ts
			if c.Name == "timestamp" {
				key = res.Instrument + "-" + ts
			}
		}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s record: %w", res.Instrument, err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "instrument", Value: []byte(res.Instrument)},
			{Key: "loaded_at", Value: []byte(res.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
