package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyAccounts = "accounts"           // zset: id -> created_at (unix nanos)
	keyAccount  = "account:"           // hash per account
	keyUsername = "account:username:" // username -> id
	keyEmail    = "account:email:"    // email -> id
)

// createScript claims both unique indexes and writes the account in one step.
// Returns the list of taken fields, empty on success.
var createScript = redis.NewScript(`
local taken = {}
if redis.call("EXISTS", KEYS[2]) == 1 then table.insert(taken, "username") end
if redis.call("EXISTS", KEYS[3]) == 1 then table.insert(taken, "email") end
if #taken > 0 then return taken end
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[1])
redis.call("HSET", KEYS[1], "id", ARGV[1], "username", ARGV[2], "email", ARGV[3], "password_digest", ARGV[4], "created_at", ARGV[5])
redis.call("ZADD", KEYS[4], ARGV[5], ARGV[1])
return taken
`)

type RedisAccountRepo struct {
	client *redis.Client
}

func NewRedisAccountRepo(client *redis.Client) *RedisAccountRepo {
	return &RedisAccountRepo{
		client: client,
	}
}

func (r *RedisAccountRepo) CreateAccount(ctx context.Context, in model.NewAccount) (model.Account, error) {
	if err := repo.CheckNewAccount(in); err != nil {
		return model.Account{}, err
	}

	account := model.Account{
		ID:             uuid.New(),
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		CreatedAt:      time.Now().UTC(),
	}
	id := account.ID.String()

	taken, err := createScript.Run(ctx, r.client,
		[]string{keyAccount + id, keyUsername + in.Username, keyEmail + in.Email, keyAccounts},
		id, in.Username, in.Email, in.PasswordDigest, account.CreatedAt.UnixNano(),
	).StringSlice()
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "CreateAccount")
	}
	if len(taken) > 0 {
		return model.Account{}, &customErrors.ConstraintError{Fields: taken}
	}
	return account, nil
}

func (r *RedisAccountRepo) FindAccountBy(ctx context.Context, field model.Field, value string) (model.Account, error) {
	var id string
	switch field {
	case model.FieldID:
		id = value
	case model.FieldUsername, model.FieldEmail:
		prefix := keyUsername
		if field == model.FieldEmail {
			prefix = keyEmail
		}
		v, err := r.client.Get(ctx, prefix+value).Result()
		switch {
		case errors.Is(err, redis.Nil):
			return model.Account{}, customErrors.ErrNotFound
		case err != nil:
			return model.Account{}, customErrors.WrapInternal(err, "FindAccountBy")
		}
		id = v
	default:
		return model.Account{}, customErrors.ErrUnsupportedField
	}

	vals, err := r.client.HGetAll(ctx, keyAccount+id).Result()
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "FindAccountBy")
	}
	if len(vals) == 0 {
		return model.Account{}, customErrors.ErrNotFound
	}
	return fromHash(vals)
}

func (r *RedisAccountRepo) ListAccountsExcluding(ctx context.Context, username string) ([]model.Account, error) {
	ids, err := r.client.ZRange(ctx, keyAccounts, 0, -1).Result()
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListAccountsExcluding")
	}
	if len(ids) == 0 {
		return []model.Account{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.HGetAll(ctx, keyAccount+id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, customErrors.WrapInternal(err, "ListAccountsExcluding")
	}

	out := make([]model.Account, 0, len(ids))
	for _, cmd := range cmds {
		vals := cmd.Val()
		if len(vals) == 0 || vals["username"] == username {
			continue
		}
		a, err := fromHash(vals)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *RedisAccountRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func fromHash(vals map[string]string) (model.Account, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "decode account id")
	}
	nanos, err := strconv.ParseInt(vals["created_at"], 10, 64)
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "decode account created_at")
	}
	return model.Account{
		ID:             id,
		Username:       vals["username"],
		Email:          vals["email"],
		PasswordDigest: vals["password_digest"],
		CreatedAt:      time.Unix(0, nanos).UTC(),
	}, nil
}
