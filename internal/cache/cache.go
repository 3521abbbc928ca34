// cache реализует необязательный Redis-кэш очищенных представлений аккаунтов.
// Его единственный потребитель — шлюз авторизации: на каждый защищённый
// запрос он загружает аккаунт по id из access-токена, и кэш снимает эту
// нагрузку с БД. Любая мутация аккаунта (logout, смена пароля, обновление
// профиля) обязана инвалидировать ключ.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/videotube-accounts/internal/models"
)

// IdentityCache — минимальный контракт кэша аккаунтов.
type IdentityCache interface {
	// Get возвращает представление и признак его наличия в кэше.
	Get(ctx context.Context, id uuid.UUID) (*models.AccountView, bool, error)
	// Set сохраняет представление с TTL.
	Set(ctx context.Context, view *models.AccountView, ttl time.Duration) error
	// Invalidate удаляет ключ аккаунта.
	Invalidate(ctx context.Context, id uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "accounts:id:".
func NewRedisCache(redisURL, prefix string) (IdentityCache, error) {
	if prefix == "" {
		prefix = "accounts:id:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(id uuid.UUID) string { return c.prefix + id.String() }

// Храним представление как JSON-строку: состав полей мал и стабилен.
func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*models.AccountView, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var view models.AccountView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false, err
	}

	return &view, true, nil
}

func (c *redisCache) Set(ctx context.Context, view *models.AccountView, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(view.ID), raw, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
