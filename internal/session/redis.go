package session

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "gym-app||"

type RedisStore struct {
	redisClient *redis.Client
	// ability to inject the token generator (for unit and dev testing)
	TokenFunc func() (string, error)
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		TokenFunc:   NewToken,
	}
}

func key(kind Kind, token string) string {
	return keyPrefix + string(kind) + "||" + token
}

// userKey is the set of live tokens of one kind issued to a user.
func userKey(kind Kind, userID string) string {
	return keyPrefix + "user||" + string(kind) + "||" + userID
}

func (s *RedisStore) Issue(ctx context.Context, kind Kind, userID string, ttl time.Duration) (string, error) {
	token, err := s.TokenFunc()
	if err != nil {
		return "", err
	}
	if err := s.redisClient.Set(ctx, key(kind, token), userID, ttl).Err(); err != nil {
		return "", err
	}
	tokensKey := userKey(kind, userID)
	if err := s.redisClient.SAdd(ctx, tokensKey, token).Err(); err != nil {
		return "", err
	}
	// the set lives as long as the newest token in it
	if err := s.redisClient.Expire(ctx, tokensKey, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Consume(ctx context.Context, kind Kind, token string) (string, error) {
	sessionKey := key(kind, token)
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", err
	}

	// a concurrent consumer may win the delete; only one of us gets the token
	deleted, err := s.redisClient.Del(ctx, sessionKey).Result()
	if err != nil {
		return "", err
	}
	if deleted == 0 {
		return "", ErrTokenNotFound
	}
	userID := cmd.Val()
	if err := s.redisClient.SRem(ctx, userKey(kind, userID), token).Err(); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, kind Kind, token string) error {
	return s.redisClient.Del(ctx, key(kind, token)).Err()
}

func (s *RedisStore) RevokeAll(ctx context.Context, kind Kind, userID string) error {
	tokensKey := userKey(kind, userID)
	tokens, err := s.redisClient.SMembers(ctx, tokensKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, key(kind, token))
	}
	keys = append(keys, tokensKey)
	return s.redisClient.Del(ctx, keys...).Err()
}
