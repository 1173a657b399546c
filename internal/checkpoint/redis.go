package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blockparser"

// redisKey is "blockparser:checkpoint:<coin>:<network>".
func redisKey(coin network.Coin, net network.Network) string {
	return fmt.Sprintf("%s:checkpoint:%s:%s", keyPrefix, coin, net)
}

// RedisStore keeps the checkpoint under one redis key without expiration.
type RedisStore struct {
	conn  *redis.Client
	key   string
	chain chain
}

func NewRedisStore(ctx context.Context, addr, username, password string, db int, coin network.Coin, net network.Network) (*RedisStore, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{
		conn:  conn,
		key:   redisKey(coin, net),
		chain: chain{coin: coin, network: net},
	}, nil
}

func (s *RedisStore) Load(ctx context.Context) (model.Checkpoint, error) {
	val, err := s.conn.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrNoCheckpointFound
		}
		return model.Checkpoint{}, err
	}
	return s.chain.decode(val)
}

func (s *RedisStore) Save(ctx context.Context, cp model.Checkpoint) error {
	data, err := s.chain.encode(cp, time.Now())
	if err != nil {
		return err
	}
	return s.conn.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.conn.Close()
}
