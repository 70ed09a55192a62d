package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*RedisAccountRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAccountRepo(client), mr
}

func newAccount(name string) model.NewAccount {
	return model.NewAccount{Username: name, Email: name + "@example.com", PasswordDigest: "digest"}
}

func TestRedisAccountRepo_CreateAndFind(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, newAccount("john"))
	require.NoError(t, err)

	for field, value := range map[model.Field]string{
		model.FieldUsername: "john",
		model.FieldEmail:    "john@example.com",
		model.FieldID:       created.ID.String(),
	} {
		got, err := repo.FindAccountBy(ctx, field, value)
		require.NoError(t, err, field)
		require.Equal(t, created, got)
	}
}

func TestRedisAccountRepo_NotFound(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.FindAccountBy(ctx, model.FieldUsername, "absent")
	require.True(t, customErrors.IsNotFound(err))

	_, err = repo.FindAccountBy(ctx, model.FieldID, "absent")
	require.True(t, customErrors.IsNotFound(err))

	_, err = repo.FindAccountBy(ctx, model.Field("nickname"), "x")
	require.ErrorIs(t, err, customErrors.ErrUnsupportedField)
}

func TestRedisAccountRepo_Uniqueness(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	_, err := repo.CreateAccount(ctx, newAccount("john"))
	require.NoError(t, err)

	_, err = repo.CreateAccount(ctx, model.NewAccount{Username: "john", Email: "x@example.com", PasswordDigest: "d"})
	var ce *customErrors.ConstraintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, []string{"username"}, ce.Fields)

	_, err = repo.CreateAccount(ctx, newAccount("john"))
	require.ErrorAs(t, err, &ce)
	require.Equal(t, []string{"username", "email"}, ce.Fields)

	// rejected creates leave nothing behind
	require.False(t, mr.Exists("account:email:x@example.com"))
	members, err := mr.ZMembers("accounts")
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestRedisAccountRepo_StoreValidation(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.CreateAccount(context.Background(), model.NewAccount{Username: "john", Email: "@", PasswordDigest: "d"})
	var sve *customErrors.StoreValidationError
	require.ErrorAs(t, err, &sve)
}

func TestRedisAccountRepo_ListExcluding(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	empty, err := repo.ListAccountsExcluding(ctx, "john")
	require.NoError(t, err)
	require.Empty(t, empty)

	for _, n := range []string{"a", "b", "c"} {
		_, err := repo.CreateAccount(ctx, newAccount(n))
		require.NoError(t, err)
	}

	got, err := repo.ListAccountsExcluding(ctx, "b")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		require.NotEqual(t, "b", a.Username)
	}
}

func TestRedisAccountRepo_ConcurrentSameUsername(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	var mu sync.Mutex
	results := map[bool]int{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateAccount(ctx, model.NewAccount{
				Username: "dup", Email: fmt.Sprintf("dup%d@example.com", i), PasswordDigest: "d",
			})
			mu.Lock()
			results[err == nil]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, results[true])
	require.Equal(t, 9, results[false])
}

func TestRedisAccountRepo_Ping(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, repo.Ping(context.Background()))
	mr.Close()
	require.Error(t, repo.Ping(context.Background()))
}
