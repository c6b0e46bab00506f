package searchlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// searchEvent is the wire shape mirrored to the event stream.
type searchEvent struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId,omitempty"`
	Query      string `json:"query"`
	IPAddress  string `json:"ipAddress,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// kafkaProducer is the slice of *kgo.Client the mirror uses.
type kafkaProducer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// flushTimeout bounds how long shutdown waits for buffered records.
const flushTimeout = 5 * time.Second

// KafkaMirror publishes recorded searches to a Kafka topic so downstream
// consumers (fraud review, analytics) see them without polling the store.
type KafkaMirror struct {
	client kafkaProducer
	logger *slog.Logger
}

func NewKafkaMirror(brokers []string, topic string, logger *slog.Logger) (*KafkaMirror, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaMirror{client: client, logger: logger}, nil
}

// Publish produces the entry asynchronously. Delivery failures are logged;
// the audit store remains the source of truth.
func (m *KafkaMirror) Publish(ctx context.Context, e *Entry) {
	event := searchEvent{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Query:     e.Query,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.EmployeeID != nil {
		event.EmployeeID = e.EmployeeID.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("failed to encode search event", "error", err.Error())
		return
	}

	record := &kgo.Record{
		Key:   []byte(e.UserID.String()),
		Value: payload,
	}
	m.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			m.logger.Error("failed to publish search event", "error", err.Error())
		}
	})
}

// Close flushes buffered records before releasing the client. Closing
// without the flush fails whatever is still buffered, dropping the tail of
// the audit stream on shutdown.
func (m *KafkaMirror) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := m.client.Flush(ctx); err != nil {
		m.logger.Error("failed to flush search events", "error", err.Error())
	}
	m.client.Close()
}
