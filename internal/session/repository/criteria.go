package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sessionerrors "travelpartner/internal/session/errors"
	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "session_criteria:"
	channelPrefix = "session_criteria_events:"
)

// CriteriaRepository keeps the search form state of a browser session and
// fans every change out to the session's watchers over Redis pub/sub.
type CriteriaRepository interface {
	Get(ctx context.Context, sessionID string) (*model.SearchCriteria, error)
	Save(ctx context.Context, sessionID string, criteria *model.SearchCriteria) error
	// Watch delivers each saved criteria value until ctx is cancelled. The
	// returned channel is closed when the subscription ends.
	Watch(ctx context.Context, sessionID string) (<-chan model.SearchCriteria, error)
}

type redisCriteriaRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisCriteriaRepository(client redis.UniversalClient, ttl time.Duration, log *logger.Logger) CriteriaRepository {
	return &redisCriteriaRepository{client: client, ttl: ttl, log: log}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func Channel(sessionID string) string {
	return channelPrefix + sessionID
}

func (r *redisCriteriaRepository) Get(ctx context.Context, sessionID string) (*model.SearchCriteria, error) {
	data, err := r.client.Get(ctx, Key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sessionerrors.ErrNotFound
		}
		return nil, fmt.Errorf("read criteria: %w", err)
	}

	var criteria model.SearchCriteria
	if err := json.Unmarshal(data, &criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	return &criteria, nil
}

// Save stores the criteria and then publishes it. A failed publish is logged;
// watchers catch up on their next read.
func (r *redisCriteriaRepository) Save(ctx context.Context, sessionID string, criteria *model.SearchCriteria) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}

	if err := r.client.Set(ctx, Key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("write criteria: %w", err)
	}

	if err := r.client.Publish(ctx, Channel(sessionID), data).Err(); err != nil {
		r.log.Warn("Failed to publish criteria change", "session_id", sessionID, "error", err)
	}
	return nil
}

func (r *redisCriteriaRepository) Watch(ctx context.Context, sessionID string) (<-chan model.SearchCriteria, error) {
	sub := r.client.Subscribe(ctx, Channel(sessionID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to criteria: %w", err)
	}

	out := make(chan model.SearchCriteria, 1)
	go func() {
		defer func() { _ = sub.Close() }()
		forward(ctx, sub.Channel(), out, r.log)
	}()
	return out, nil
}

// forward decodes pub/sub payloads onto out until ctx ends or msgs closes.
// Undecodable payloads are skipped.
func forward(ctx context.Context, msgs <-chan *redis.Message, out chan<- model.SearchCriteria, log *logger.Logger) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var criteria model.SearchCriteria
			if err := json.Unmarshal([]byte(msg.Payload), &criteria); err != nil {
				log.Warn("Dropping malformed criteria event", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case out <- criteria:
			case <-ctx.Done():
				return
			}
		}
	}
}
