package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"noteful-api/internal/domain"
)

// redisUserClient es el subconjunto de *redis.Client que usa el store.
type redisUserClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisUserRepository guarda usuarios en hashes de Redis.
// La unicidad del username la garantiza SETNX sobre la clave del username.
type RedisUserRepository struct {
	client redisUserClient
	prefix string
}

func NewRedisUserRepository(client *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "noteful:user:",
	}
}

func (r *RedisUserRepository) usernameKey(username string) string {
	return r.prefix + "username:" + username
}

func (r *RedisUserRepository) idKey(id string) string {
	return r.prefix + "id:" + id
}

func (r *RedisUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user = prepareForInsert(user)

	ok, err := r.client.SetNX(ctx, r.usernameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("reserve username: %w", err)
	}
	if !ok {
		return domain.User{}, domain.ErrDuplicateUsername
	}

	err = r.client.HSet(ctx, r.idKey(user.ID),
		"id", user.ID,
		"username", user.Username,
		"fullname", user.Fullname,
		"password_hash", user.PasswordHash,
		"created_at", user.CreatedAt.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		// Libera el username para no dejar una reserva huérfana.
		_ = r.client.Del(ctx, r.usernameKey(user.Username)).Err()
		return domain.User{}, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return domain.User{}, domain.ErrUserNotFound
	}
	fields, err := r.client.HGetAll(ctx, r.idKey(id)).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if len(fields) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	user := domain.User{
		ID:           fields["id"],
		Username:     fields["username"],
		Fullname:     fields["fullname"],
		PasswordHash: fields["password_hash"],
	}
	if raw := fields["created_at"]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.User{}, fmt.Errorf("parse created_at: %w", err)
		}
		user.CreatedAt = createdAt
	}
	return user, nil
}

func (r *RedisUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	id, err := r.client.Get(ctx, r.usernameKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get username: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RedisUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.client.Exists(ctx, r.usernameKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (r *RedisUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
