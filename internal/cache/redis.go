// Package cache работа с Redis. Единственный потребитель - протокол refresh
// токенов: кеш хранит действующий refresh токен каждого юзера.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect создает клиент Redis и проверяет соединение.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %s", addr, err.Error())
	}
	return client, nil
}
