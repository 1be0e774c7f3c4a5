package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps each request as JSON under "<prefix><token>" and indexes tokens in a
// sorted set scored by creation time.
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Redis backed Store. Prefix may be empty.
func NewRedisStore(client *redis.Client, prefix string) Store {
	if prefix == "" {
		prefix = "request:"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(token string) string {
	return s.prefix + token
}

func (s *redisStore) index() string {
	return s.prefix + "index"
}

func (s *redisStore) Get(ctx context.Context, token string) (*Request, error) {
	b, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRequest(b)
}

func (s *redisStore) Put(ctx context.Context, req *Request) error {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(req.Token), b, 0)
		pipe.ZAdd(ctx, s.index(), redis.Z{Score: float64(req.CreatedAt.UnixMilli()), Member: req.Token})
		return nil
	})
	return err
}

func (s *redisStore) ListAll(ctx context.Context) ([]*Request, error) {
	tokens, err := s.client.ZRevRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []*Request{}, nil
	}

	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = s.key(t)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*Request, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		req, err := decodeRequest([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(token))
		pipe.ZRem(ctx, s.index(), token)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRequest(b []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if req.Signatures == nil {
		req.Signatures = map[string]Signature{}
	}
	return &req, nil
}
