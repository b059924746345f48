package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const holdKeyPrefix = "seat_hold"

// holdScript claims every key for ARGV[1] or none of them. It returns 0 on
// success and otherwise the 1-based index of the first key owned by someone
// else. Keys already owned by ARGV[1] get their TTL refreshed.
var holdScript = redis.NewScript(`
for i = 1, #KEYS do
	local owner = redis.call("GET", KEYS[i])
	if owner and owner ~= ARGV[1] then
		return i
	end
end
for i = 1, #KEYS do
	redis.call("SET", KEYS[i], ARGV[1], "PX", ARGV[2])
end
return 0
`)

// releaseScript deletes only the keys still owned by ARGV[1].
var releaseScript = redis.NewScript(`
local released = 0
for i = 1, #KEYS do
	if redis.call("GET", KEYS[i]) == ARGV[1] then
		redis.call("DEL", KEYS[i])
		released = released + 1
	end
end
return released
`)

// HoldStore keeps short-lived seat holds for checkouts in flight. A hold only
// keeps other checkouts away while payment is pending; the persisted seat
// status stays authoritative.
type HoldStore interface {
	// Hold claims all seats for holdID or returns a *SeatsHeldError naming
	// the first seat another hold owns.
	Hold(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string, ttl time.Duration) error
	Release(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) (int64, error)
	// HeldByOthers returns the seats held by anyone other than holdID.
	HeldByOthers(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error)
}

type SeatsHeldError struct {
	Seat string
}

func (e *SeatsHeldError) Error() string {
	return fmt.Sprintf("seat %s is held by another checkout", e.Seat)
}

type redisHoldStore struct {
	client redis.UniversalClient
}

func NewRedisHoldStore(client redis.UniversalClient) HoldStore {
	return &redisHoldStore{client: client}
}

func HoldKey(inventoryID, fareClass, seat string) string {
	return fmt.Sprintf("%s:%s:%s:%s", holdKeyPrefix, inventoryID, fareClass, seat)
}

func holdKeys(inventoryID, fareClass string, seats []string) []string {
	keys := make([]string, len(seats))
	for i, seat := range seats {
		keys[i] = HoldKey(inventoryID, fareClass, seat)
	}
	return keys
}

func (s *redisHoldStore) Hold(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string, ttl time.Duration) error {
	if len(seats) == 0 {
		return nil
	}

	idx, err := holdScript.Run(ctx, s.client, holdKeys(inventoryID, fareClass, seats), holdID, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("hold seats: %w", err)
	}
	if idx > 0 && int(idx) <= len(seats) {
		return &SeatsHeldError{Seat: seats[idx-1]}
	}
	return nil
}

func (s *redisHoldStore) Release(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}

	n, err := releaseScript.Run(ctx, s.client, holdKeys(inventoryID, fareClass, seats), holdID).Int64()
	if err != nil {
		return 0, fmt.Errorf("release seats: %w", err)
	}
	return n, nil
}

func (s *redisHoldStore) HeldByOthers(ctx context.Context, inventoryID, fareClass string, seats []string, holdID string) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, holdKeys(inventoryID, fareClass, seats)...).Result()
	if err != nil {
		return nil, fmt.Errorf("read seat holds: %w", err)
	}

	var held []string
	for i, v := range values {
		owner, ok := v.(string)
		if !ok || owner == "" || owner == holdID {
			continue
		}
		held = append(held, seats[i])
	}
	return held, nil
}
