package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	selectionerrors "travelpartner/internal/selection/errors"
	"travelpartner/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "selection:"
	maxUpdateAttempts = 5
)

type SelectionRepository interface {
	Get(ctx context.Context, id string) (*model.Selection, error)
	Save(ctx context.Context, selection *model.Selection) error
	// Update applies fn to the stored selection and writes the result only if
	// nothing else wrote it in between. An error from fn aborts the update
	// and is returned as is.
	Update(ctx context.Context, id string, fn func(*model.Selection) error) (*model.Selection, error)
	Delete(ctx context.Context, id string) error
}

type redisSelectionRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSelectionRepository stores selections as JSON documents. Every save
// renews the TTL, so an idle selection expires on its own.
func NewRedisSelectionRepository(client redis.UniversalClient, ttl time.Duration) SelectionRepository {
	return &redisSelectionRepository{client: client, ttl: ttl}
}

func Key(id string) string {
	return keyPrefix + id
}

func (r *redisSelectionRepository) Get(ctx context.Context, id string) (*model.Selection, error) {
	data, err := r.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, selectionerrors.ErrNotFound
		}
		return nil, fmt.Errorf("read selection: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*model.Selection, error) {
	var selection model.Selection
	if err := json.Unmarshal(data, &selection); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	if selection.Seats == nil {
		selection.Seats = []string{}
	}
	return &selection, nil
}

func (r *redisSelectionRepository) Save(ctx context.Context, selection *model.Selection) error {
	data, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := r.client.Set(ctx, Key(selection.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// Update is an optimistic read-modify-write under WATCH, retried a few times
// when another writer gets in first.
func (r *redisSelectionRepository) Update(ctx context.Context, id string, fn func(*model.Selection) error) (*model.Selection, error) {
	key := Key(id)
	var updated *model.Selection

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return selectionerrors.ErrNotFound
			}
			return fmt.Errorf("read selection: %w", err)
		}
		selection, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(selection); err != nil {
			return err
		}
		out, err := json.Marshal(selection)
		if err != nil {
			return fmt.Errorf("encode selection: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, r.ttl)
			return nil
		})
		if err == nil {
			updated = selection
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, selectionerrors.ErrContended
}

// Delete is idempotent; a missing selection is not an error.
func (r *redisSelectionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}
