package outbox

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubProducer struct {
	written map[string][]kafka.Message
	err     error
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	if s.written == nil {
		s.written = make(map[string][]kafka.Message)
	}
	s.written[topic] = append(s.written[topic], msgs...)
	return nil
}

type stubRegistry struct {
	id    int
	calls int
}

func (s *stubRegistry) EnsureSchema(ctx context.Context, subject, schema string) (int, error) {
	s.calls++
	return s.id, nil
}

func TestDeliverFramesAndBatchesByTopic(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 7}
	d := &Dispatcher{producer: producer, registry: registry}

	messages := []Message{
		{EventID: 1, AggregateID: "act-1", EventType: "activity.logged", Topic: "carbon_activity_events", SchemaSubject: "carbon_activity_events-value", PartitionKey: "user-1", Payload: []byte(`{"activity_id":"act-1"}`)},
		{EventID: 2, AggregateID: "sum-1", EventType: "summary.generated", Topic: "carbon_summary_events", SchemaSubject: "carbon_summary_events-value", PartitionKey: "user-1", Payload: []byte(`{"summary_id":"sum-1"}`)},
	}

	require.NoError(t, d.deliver(context.Background(), messages))

	require.Len(t, producer.written["carbon_activity_events"], 1)
	require.Len(t, producer.written["carbon_summary_events"], 1)

	frame := producer.written["carbon_activity_events"][0].Value
	require.Equal(t, byte(0), frame[0])
	require.Equal(t, uint32(7), binary.BigEndian.Uint32(frame[1:5]))
	require.JSONEq(t, `{"activity_id":"act-1"}`, string(frame[5:]))
	require.Equal(t, []byte("user-1"), producer.written["carbon_activity_events"][0].Key)
}

func TestDeliverCachesSchemaIDsPerSubject(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 3}
	d := &Dispatcher{producer: producer, registry: registry}

	messages := []Message{
		{EventID: 1, AggregateID: "a", EventType: "activity.logged", Topic: "carbon_activity_events", SchemaSubject: "carbon_activity_events-value", PartitionKey: "u", Payload: []byte(`{}`)},
		{EventID: 2, AggregateID: "b", EventType: "activity.deleted", Topic: "carbon_activity_events", SchemaSubject: "carbon_activity_events-value", PartitionKey: "u", Payload: []byte(`{}`)},
	}

	require.NoError(t, d.deliver(context.Background(), messages))
	require.Equal(t, 1, registry.calls)
}

func TestDeliverUnknownEventTypeFails(t *testing.T) {
	d := &Dispatcher{producer: &stubProducer{}, registry: &stubRegistry{}}

	err := d.deliver(context.Background(), []Message{{EventType: "mystery.event"}})
	require.Error(t, err)
}

func TestDeliverPropagatesProducerErrors(t *testing.T) {
	producer := &stubProducer{err: errors.New("broker down")}
	d := &Dispatcher{producer: producer, registry: &stubRegistry{}}

	messages := []Message{
		{EventID: 1, AggregateID: "a", EventType: "activity.logged", Topic: "carbon_activity_events", SchemaSubject: "carbon_activity_events-value", PartitionKey: "u", Payload: []byte(`{}`)},
	}

	require.Error(t, d.deliver(context.Background(), messages))
}
