package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Account is the gorm row for the accounts table.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username       string    `gorm:"not null;uniqueIndex:accounts_username_key"`
	Email          string    `gorm:"not null;uniqueIndex:accounts_email_key"`
	PasswordDigest string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (Account) TableName() string { return "accounts" }

// constraint name -> field; names match scripts/db/migrations
var uniqueConstraints = map[string]model.Field{
	"accounts_username_key": model.FieldUsername,
	"accounts_email_key":    model.FieldEmail,
}

var columns = map[model.Field]string{
	model.FieldID:       "id",
	model.FieldUsername: "username",
	model.FieldEmail:    "email",
}

type PostgresAccountRepo struct {
	db *gorm.DB
}

func NewPostgresAccountRepo(db *gorm.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

func (p *PostgresAccountRepo) CreateAccount(ctx context.Context, in model.NewAccount) (model.Account, error) {
	if err := repo.CheckNewAccount(in); err != nil {
		return model.Account{}, err
	}

	row := Account{
		ID:             uuid.New(),
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		CreatedAt:      time.Now().UTC(),
	}

	res := p.db.WithContext(ctx).Create(&row)
	if err := res.Error; err != nil {
		if fields, ok := p.violatedFields(ctx, err, in); ok {
			return model.Account{}, &customErrors.ConstraintError{Fields: fields}
		}
		return model.Account{}, customErrors.WrapInternal(err, "CreateAccount")
	}
	return toModel(row), nil
}

// violatedFields reports which unique fields collided. Postgres names the
// constraint; other dialects only say "duplicate", so the fields are probed.
func (p *PostgresAccountRepo) violatedFields(ctx context.Context, err error, in model.NewAccount) ([]string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return nil, false
		}
		if field, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return []string{string(field)}, true
		}
		return p.probe(ctx, in), true
	}

	if t, ok := p.db.Dialector.(gorm.ErrorTranslator); ok && errors.Is(t.Translate(err), gorm.ErrDuplicatedKey) {
		return p.probe(ctx, in), true
	}
	return nil, false
}

func (p *PostgresAccountRepo) probe(ctx context.Context, in model.NewAccount) []string {
	var taken []string
	for _, c := range []struct {
		field model.Field
		value string
	}{
		{model.FieldUsername, in.Username},
		{model.FieldEmail, in.Email},
	} {
		var n int64
		err := p.db.WithContext(ctx).Model(&Account{}).Where(columns[c.field]+" = ?", c.value).Count(&n).Error
		if err == nil && n > 0 {
			taken = append(taken, string(c.field))
		}
	}
	return taken
}

func (p *PostgresAccountRepo) FindAccountBy(ctx context.Context, field model.Field, value string) (model.Account, error) {
	column, ok := columns[field]
	if !ok {
		return model.Account{}, customErrors.ErrUnsupportedField
	}
	if field == model.FieldID {
		if _, err := uuid.Parse(value); err != nil {
			return model.Account{}, customErrors.ErrNotFound
		}
	}

	var row Account
	res := p.db.WithContext(ctx).Where(column+" = ?", value).First(&row)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "FindAccountBy")
	}

	return toModel(row), nil
}

func (p *PostgresAccountRepo) ListAccountsExcluding(ctx context.Context, username string) ([]model.Account, error) {
	var rows []Account
	res := p.db.WithContext(ctx).
		Where("username <> ?", username).
		Order("created_at, id").
		Find(&rows)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListAccountsExcluding")
	}

	out := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, toModel(r))
	}
	return out, nil
}

func (p *PostgresAccountRepo) Ping(ctx context.Context) error {
	return p.db.WithContext(ctx).Exec("SELECT 1").Error
}

func toModel(r Account) model.Account {
	return model.Account{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		PasswordDigest: r.PasswordDigest,
		CreatedAt:      r.CreatedAt,
	}
}
