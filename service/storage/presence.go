package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Best-effort presence mirror in Redis so other processes (REST API
// nodes, crons) can answer "is user X online" without reaching into
// relay memory. The relay's own registry stays the source of truth.

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var rdb *redis.Client

func InitRedis(ctx context.Context, c RedisConfig) error {
	rdb = redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	return rdb.Ping(ctx).Err()
}

// presence key: cb:presence:<user>
// value is the node id; TTL bounds the staleness window after an
// unclean close.
func presenceKey(user string) string { return "cb:presence:" + user }

// PresenceOnline marks the user online and renews the TTL.
func PresenceOnline(ctx context.Context, user, nodeID string, ttl time.Duration) error {
	if rdb == nil {
		return errors.New("redis not initialized")
	}
	return rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err()
}

// PresenceOffline removes the key on clean disconnect.
func PresenceOffline(ctx context.Context, user string) error {
	if rdb == nil {
		return errors.New("redis not initialized")
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports whether the mirror considers the user online.
func PresenceLookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	if rdb == nil {
		return "", false, errors.New("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
