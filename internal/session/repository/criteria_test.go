package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sessionerrors "travelpartner/internal/session/errors"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCriteria() *model.SearchCriteria {
	return &model.SearchCriteria{
		Mode:      model.ModeTrain,
		From:      "Pune",
		To:        "Mumbai",
		Date:      "2026-12-01",
		UpdatedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRedisCriteriaRepository_SavePublishes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewRedisCriteriaRepository(db, time.Hour, logger.Discard())

	criteria := sampleCriteria()
	data, err := json.Marshal(criteria)
	require.NoError(t, err)

	mock.ExpectSet("session_criteria:s-1", data, time.Hour).SetVal("OK")
	mock.ExpectPublish("session_criteria_events:s-1", data).SetVal(2)

	require.NoError(t, repo.Save(context.Background(), "s-1", criteria))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCriteriaRepository_PublishFailureIsNotFatal(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewRedisCriteriaRepository(db, time.Hour, logger.Discard())

	criteria := sampleCriteria()
	data, _ := json.Marshal(criteria)

	mock.ExpectSet("session_criteria:s-1", data, time.Hour).SetVal("OK")
	mock.ExpectPublish("session_criteria_events:s-1", data).SetErr(errors.New("broken pipe"))

	assert.NoError(t, repo.Save(context.Background(), "s-1", criteria))
}

func TestRedisCriteriaRepository_SaveFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewRedisCriteriaRepository(db, time.Hour, logger.Discard())

	criteria := sampleCriteria()
	data, _ := json.Marshal(criteria)
	mock.ExpectSet("session_criteria:s-1", data, time.Hour).SetErr(errors.New("OOM"))

	assert.Error(t, repo.Save(context.Background(), "s-1", criteria))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCriteriaRepository_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewRedisCriteriaRepository(db, time.Hour, logger.Discard())

	data, _ := json.Marshal(sampleCriteria())
	mock.ExpectGet("session_criteria:s-1").SetVal(string(data))
	mock.ExpectGet("session_criteria:s-2").RedisNil()

	got, err := repo.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got.From)
	assert.Equal(t, model.ModeTrain, got.Mode)

	_, err = repo.Get(context.Background(), "s-2")
	assert.ErrorIs(t, err, sessionerrors.ErrNotFound)
}

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan *redis.Message, 3)
	out := make(chan model.SearchCriteria, 3)

	data, _ := json.Marshal(sampleCriteria())
	msgs <- &redis.Message{Channel: "c", Payload: "not json"}
	msgs <- &redis.Message{Channel: "c", Payload: string(data)}
	close(msgs)

	forward(ctx, msgs, out, logger.Discard())

	var got []model.SearchCriteria
	for c := range out {
		got = append(got, c)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "Mumbai", got[0].To)
}

func TestForward_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan *redis.Message)
	out := make(chan model.SearchCriteria)

	done := make(chan struct{})
	go func() {
		forward(ctx, msgs, out, logger.Discard())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward did not return after cancel")
	}
	_, open := <-out
	assert.False(t, open)
}
