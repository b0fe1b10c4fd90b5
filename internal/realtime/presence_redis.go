package realtime

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey     = "presence:online"
	sessionKeyPrefix = "presence:sessions:"
)

// RedisRegistry keeps presence in Redis so every instance behind a load
// balancer sees the same online set. Session ids live in a per-user set
// and the online directory is a second set of user ids.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(addr string) (*RedisRegistry, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisRegistry{rdb: rdb}, nil
}

func sessionKey(userId int) string {
	return sessionKeyPrefix + strconv.Itoa(userId)
}

func (r *RedisRegistry) Register(userId int, sessionId string) (bool, error) {
	ctx := context.Background()

	if err := r.rdb.SAdd(ctx, sessionKey(userId), sessionId).Err(); err != nil {
		return false, fmt.Errorf("register session: %w", err)
	}

	count, err := r.rdb.SCard(ctx, sessionKey(userId)).Result()
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}

	if err := r.rdb.SAdd(ctx, onlineSetKey, strconv.Itoa(userId)).Err(); err != nil {
		return false, fmt.Errorf("mark online: %w", err)
	}

	return count == 1, nil
}

func (r *RedisRegistry) Unregister(userId int, sessionId string) (bool, error) {
	ctx := context.Background()

	if err := r.rdb.SRem(ctx, sessionKey(userId), sessionId).Err(); err != nil {
		return false, fmt.Errorf("unregister session: %w", err)
	}

	count, err := r.rdb.SCard(ctx, sessionKey(userId)).Result()
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := r.rdb.SRem(ctx, onlineSetKey, strconv.Itoa(userId)).Err(); err != nil {
		return false, fmt.Errorf("mark offline: %w", err)
	}

	return true, nil
}

func (r *RedisRegistry) IsOnline(userId int) (bool, error) {
	online, err := r.rdb.SIsMember(context.Background(), onlineSetKey, strconv.Itoa(userId)).Result()
	if err != nil {
		return false, fmt.Errorf("check online: %w", err)
	}

	return online, nil
}

func (r *RedisRegistry) OnlineUsers() ([]int, error) {
	members, err := r.rdb.SMembers(context.Background(), onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}

	userIds := make([]int, 0, len(members))
	for _, member := range members {
		userId, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		userIds = append(userIds, userId)
	}

	return userIds, nil
}

func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}
