package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisher_WhenCreated_ThenHasProductionSettings(t *testing.T) {
	// Arrange
	brokers := []string{"broker1:9092", "broker2:9092"}

	// Act
	publisher := NewPublisher(brokers, "client-events", zap.NewNop())

	// Assert
	writer, ok := publisher.writer.(*kafka.Writer)
	if !ok {
		t.Fatalf("expected *kafka.Writer, got %T", publisher.writer)
	}
	if writer.Topic != "client-events" {
		t.Errorf("expected topic 'client-events', got '%s'", writer.Topic)
	}
	if writer.Addr.String() != "broker1:9092,broker2:9092" {
		t.Errorf("unexpected broker configuration: %s", writer.Addr.String())
	}
	if writer.RequiredAcks != kafka.RequireAll {
		t.Errorf("expected RequiredAcks to be RequireAll, got %d", writer.RequiredAcks)
	}
	if writer.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts to be 3, got %d", writer.MaxAttempts)
	}
	if writer.WriteTimeout != 10*time.Second {
		t.Errorf("expected WriteTimeout to be 10s, got %v", writer.WriteTimeout)
	}
}

func TestPublish_WhenEventIsValid_ThenWritesKeyedJSON(t *testing.T) {
	// Arrange
	writer := &recordingWriter{}
	publisher := &Publisher{writer: writer, topic: "client-events", logger: zap.NewNop()}
	event := ClientEvent{
		EventID:    "evt-1",
		Type:       ClientCreated,
		ClientIDs:  []int64{7},
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RequestID:  "req-1",
	}

	// Act
	err := publisher.Publish(context.Background(), event)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(writer.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if string(msg.Key) != "evt-1" {
		t.Errorf("expected key 'evt-1', got '%s'", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != ClientCreated {
		t.Errorf("expected event_type header, got %v", msg.Headers)
	}

	var decoded ClientEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.Type != ClientCreated || len(decoded.ClientIDs) != 1 || decoded.ClientIDs[0] != 7 {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestPublish_WhenWriterFails_ThenReturnsWrappedError(t *testing.T) {
	// Arrange
	cause := errors.New("leader not available")
	publisher := &Publisher{writer: &recordingWriter{err: cause}, logger: zap.NewNop()}

	// Act
	err := publisher.Publish(context.Background(), ClientEvent{EventID: "evt-2", Type: ClientDeleted})

	// Assert
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped writer error, got %v", err)
	}
}

func TestClose_WhenCalled_ThenClosesWriter(t *testing.T) {
	// Arrange
	writer := &recordingWriter{}
	publisher := &Publisher{writer: writer, logger: zap.NewNop()}

	// Act
	err := publisher.Close()

	// Assert
	if err != nil || !writer.closed {
		t.Errorf("expected writer to be closed, err=%v", err)
	}
}

func TestNoopPublisher_WhenPublishing_ThenDropsEvent(t *testing.T) {
	var p NoopPublisher
	if err := p.Publish(context.Background(), ClientEvent{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
