package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteful-api/internal/db"
	"noteful-api/internal/domain"
)

func newSQLiteRepo(t *testing.T) UserRepository {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLiteUserRepository(sqlDB)
}

func newFakeRedisRepo(t *testing.T) UserRepository {
	t.Helper()
	return &RedisUserRepository{client: newFakeRedis(), prefix: "test:user:"}
}

var repoFactories = map[string]func(t *testing.T) UserRepository{
	"memory": func(t *testing.T) UserRepository { return NewMemoryUserRepository() },
	"sqlite": newSQLiteRepo,
	"redis":  newFakeRedisRepo,
}

func TestUserRepository_Contract(t *testing.T) {
	for name, factory := range repoFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("create assigns id and persists", func(t *testing.T) {
				repo := factory(t)
				created, err := repo.Create(ctx, domain.User{
					Username:     "alice",
					Fullname:     "Alice A",
					PasswordHash: "hash-1",
				})
				require.NoError(t, err)
				assert.NotEmpty(t, created.ID)
				assert.False(t, created.CreatedAt.IsZero())

				byName, err := repo.GetByUsername(ctx, "alice")
				require.NoError(t, err)
				assert.Equal(t, created.ID, byName.ID)
				assert.Equal(t, "Alice A", byName.Fullname)
				assert.Equal(t, "hash-1", byName.PasswordHash)

				byID, err := repo.GetByID(ctx, created.ID)
				require.NoError(t, err)
				assert.Equal(t, "alice", byID.Username)

				exists, err := repo.ExistsByUsername(ctx, "alice")
				require.NoError(t, err)
				assert.True(t, exists)
			})

			t.Run("duplicate username rejected", func(t *testing.T) {
				repo := factory(t)
				_, err := repo.Create(ctx, domain.User{Username: "bob", PasswordHash: "h"})
				require.NoError(t, err)

				_, err = repo.Create(ctx, domain.User{Username: "bob", PasswordHash: "h2"})
				assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
			})

			t.Run("username match is exact", func(t *testing.T) {
				repo := factory(t)
				_, err := repo.Create(ctx, domain.User{Username: "Carol", PasswordHash: "h"})
				require.NoError(t, err)

				_, err = repo.GetByUsername(ctx, "carol")
				assert.ErrorIs(t, err, domain.ErrUserNotFound)
			})

			t.Run("missing user", func(t *testing.T) {
				repo := factory(t)
				_, err := repo.GetByUsername(ctx, "nobody")
				assert.ErrorIs(t, err, domain.ErrUserNotFound)
				_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
				assert.ErrorIs(t, err, domain.ErrUserNotFound)

				exists, err := repo.ExistsByUsername(ctx, "nobody")
				require.NoError(t, err)
				assert.False(t, exists)
			})

			t.Run("ping", func(t *testing.T) {
				assert.NoError(t, factory(t).Ping(ctx))
			})
		})
	}
}

func TestUserRepository_ConcurrentCreateSameUsername(t *testing.T) {
	for name, factory := range repoFactories {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			const workers = 8
			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				successes  int
				duplicates int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := repo.Create(ctx, domain.User{
						Username:     "racer",
						PasswordHash: fmt.Sprintf("h-%d", i),
					})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case assert.ErrorIs(t, err, domain.ErrDuplicateUsername):
						duplicates++
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, 1, successes)
			assert.Equal(t, workers-1, duplicates)
		})
	}
}
