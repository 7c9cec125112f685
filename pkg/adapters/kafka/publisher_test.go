package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sensactkafka "github.com/aretw0/sensact/pkg/adapters/kafka"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Hooks(t *testing.T) {
	w := &fakeWriter{}
	p := sensactkafka.NewPublisherWithWriter(w, "")
	hooks := p.Hooks()
	ctx := context.Background()
	now := time.Now().UTC()

	hooks.OnGoalEnter(ctx, &domain.GoalEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventGoalEnter, RunID: "run-1"},
		RuleSet:   "open_file",
		Goal:      domain.NewRecord("open_file", "file", "a.txt"),
	})
	hooks.OnRuleFire(ctx, &domain.RuleEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventRuleFire, RunID: "run-1"},
		RuleSet:   "open_file",
		RuleID:    "menu",
		Tick:      1,
	})

	require.Len(t, w.msgs, 2)
	first := w.msgs[0]
	assert.Equal(t, sensactkafka.DefaultTopic, first.Topic)
	assert.Equal(t, "run-1", string(first.Key))
	assert.Equal(t, "goal_enter", string(first.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &decoded))
	assert.Equal(t, "menu", decoded["rule_id"])
	assert.Equal(t, "rule_fire", decoded["type"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteErrorsAreSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := sensactkafka.NewPublisherWithWriter(w, "events")

	assert.NotPanics(t, func() {
		p.Hooks().OnAction(context.Background(), &domain.ActionEvent{Action: domain.NewRecord("click"), OK: true})
	})
	assert.Empty(t, w.msgs)
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := sensactkafka.NewPublisher(sensactkafka.Config{})
	assert.Error(t, err)

	p, err := sensactkafka.NewPublisher(sensactkafka.Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
