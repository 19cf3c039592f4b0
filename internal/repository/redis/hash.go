// Package redis implements the repositories on Redis. Each collection is one
// hash keyed by entity id whose values are the JSON-encoded entities.
package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

// Hash keys.
const (
	ProductsKey = "products"
	CartsKey    = "carts"
)

// maxUpdateAttempts bounds optimistic retries when a watched hash changes
// between read and write.
const maxUpdateAttempts = 10

// hashStore stores entities of type T in a single Redis hash.
type hashStore[T any] struct {
	client   *redis.Client
	key      string
	resource string
	idOf     func(*T) string
}

func (s *hashStore[T]) decode(raw string, id string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, apperrors.Persistence("decode "+s.resource+" "+id, err)
	}
	return &v, nil
}

func (s *hashStore[T]) all(ctx context.Context, operation string) (_ []T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, operation, "HVALS "+s.key)
	defer func() { end(err) }()

	vals, err := s.client.HVals(ctx, s.key).Result()
	if err != nil {
		return nil, apperrors.Persistence("list "+s.resource+"s", err)
	}
	out := make([]T, 0, len(vals))
	for _, raw := range vals {
		v, err := s.decode(raw, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *hashStore[T]) get(ctx context.Context, operation, id string) (_ *T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, operation, "HGET "+s.key)
	defer func() { end(err) }()

	raw, err := s.client.HGet(ctx, s.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound(s.resource, id)
	}
	if err != nil {
		return nil, apperrors.Persistence("get "+s.resource, err)
	}
	return s.decode(raw, id)
}

func (s *hashStore[T]) create(ctx context.Context, operation string, v *T) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, operation, "HSETNX "+s.key)
	defer func() { end(err) }()

	id := s.idOf(v)
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Persistence("encode "+s.resource, err)
	}
	ok, err := s.client.HSetNX(ctx, s.key, id, data).Result()
	if err != nil {
		return apperrors.Persistence("create "+s.resource, err)
	}
	if !ok {
		return apperrors.AlreadyExists(s.resource, "id", id)
	}
	return nil
}

// update reads the entity under WATCH, applies mutate and writes it back in a
// MULTI block. A concurrent writer aborts the transaction and the whole
// read-modify-write is retried, so mutate may run more than once.
func (s *hashStore[T]) update(ctx context.Context, operation, id string, mutate func(*T) error) (_ *T, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, operation, "WATCH "+s.key+" HGET HSET")
	defer func() { end(err) }()

	var result *T
	var passthrough error
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, s.key, id).Result()
		if errors.Is(err, redis.Nil) {
			passthrough = apperrors.NotFound(s.resource, id)
			return passthrough
		}
		if err != nil {
			return err
		}
		v, err := s.decode(raw, id)
		if err != nil {
			passthrough = err
			return err
		}
		if err := mutate(v); err != nil {
			passthrough = err
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, id, data)
			return nil
		}); err != nil {
			return err
		}
		result = v
		return nil
	}

	for range maxUpdateAttempts {
		passthrough = nil
		err = s.client.Watch(ctx, txf, s.key)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case passthrough != nil:
			return nil, passthrough
		default:
			return nil, apperrors.Persistence("update "+s.resource, err)
		}
	}
	return nil, apperrors.Persistence("update "+s.resource, err)
}

func (s *hashStore[T]) delete(ctx context.Context, operation, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, operation, "HDEL "+s.key)
	defer func() { end(err) }()

	n, err := s.client.HDel(ctx, s.key, id).Result()
	if err != nil {
		return apperrors.Persistence("delete "+s.resource, err)
	}
	if n == 0 {
		return apperrors.NotFound(s.resource, id)
	}
	return nil
}
