package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/redis/go-redis/v9"
)

const refreshTokenKeyPrefix = "refreshToken:"

// RefreshTokenStore хранит refresh токены в Redis по ключу refreshToken:<userID>.
// Один ключ на юзера: новая запись перезаписывает предыдущую, чем обеспечивается
// единственная активная сессия.
type RefreshTokenStore struct {
	client *redis.Client
}

func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

func refreshTokenKey(userID int64) string {
	return fmt.Sprintf("%s%d", refreshTokenKeyPrefix, userID)
}

// Set сохраняет токен с TTL равным сроку жизни самого токена.
func (s *RefreshTokenStore) Set(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("caching refresh token for user %d: %s", userID, err.Error())
	}
	return nil
}

// Get возвращает закешированный токен или domain.ErrRecordNotFound если ключа нет
// (токен истек, был отозван или перезаписан новым логином).
func (s *RefreshTokenStore) Get(ctx context.Context, userID int64) (string, error) {
	token, err := s.client.Get(ctx, refreshTokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("refresh token for user %d: %w", userID, domain.ErrRecordNotFound)
		}
		return "", fmt.Errorf("getting refresh token for user %d: %s", userID, err.Error())
	}
	return token, nil
}

// Del удаляет токен (logout). Отсутствие ключа не ошибка.
func (s *RefreshTokenStore) Del(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, refreshTokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting refresh token for user %d: %s", userID, err.Error())
	}
	return nil
}
