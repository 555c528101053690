package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wholesail/wholesail-backend/pkg/config"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	"github.com/wholesail/wholesail-backend/pkg/logger"
)

type stubRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (r *stubRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	out := r.events
	r.events = nil
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubRepo) MarkPublished(id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *stubRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type stubResult struct {
	err error
}

func (r stubResult) Get(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

type stubPublisher struct {
	messages []*gcppubsub.Message
	failFor  map[string]error
}

func (p *stubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if err, ok := p.failFor[msg.Attributes["aggregate_id"]]; ok {
		return stubResult{err: err}
	}
	return stubResult{}
}

func newTestService(t *testing.T, repo *stubRepo, pub *stubPublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func outboxRow(aggregateID uuid.UUID) models.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{"eventId": uuid.NewString(), "data": map[string]any{}})
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       payload,
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := outboxRow(uuid.New())
	second := outboxRow(uuid.New())
	repo := &stubRepo{events: []models.OutboxEvent{first, second}}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Len(t, pub.messages, 2)
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, repo.published)
	require.Empty(t, repo.failed)

	attrs := pub.messages[0].Attributes
	require.Equal(t, string(enums.EventOrderCreated), attrs["event_type"])
	require.Equal(t, string(enums.AggregateOrder), attrs["aggregate_type"])
	require.Equal(t, first.AggregateID.String(), attrs["aggregate_id"])
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	broken := outboxRow(uuid.New())
	healthy := outboxRow(uuid.New())
	repo := &stubRepo{events: []models.OutboxEvent{broken, healthy}}
	pub := &stubPublisher{failFor: map[string]error{
		broken.AggregateID.String(): errors.New("topic unavailable"),
	}}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	require.Equal(t, []uuid.UUID{broken.ID}, repo.failed)
	require.Equal(t, []uuid.UUID{healthy.ID}, repo.published)
}

func TestProcessBatchEmptyFetch(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
	require.Empty(t, pub.messages)
}
