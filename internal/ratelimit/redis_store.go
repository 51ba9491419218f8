package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window state in Redis so several processes can share one
// admission budget. Each hit runs INCR and EXPIRE NX in one transaction:
// the TTL is set with the first increment and left alone afterwards, so the
// window cannot be extended by traffic, and a counter that somehow lost its
// TTL picks one up on the next hit instead of denying the client forever.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "ratelimit:"}
}

func (s *RedisStore) Hit(ctx context.Context, clientID string, window time.Duration) (int, error) {
	key := s.prefix + clientID
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

var _ Store = (*RedisStore)(nil)
