package migrate

import (
	"io/fs"
	"testing"

	migrationsFS "github.com/Miraines/MoonyAndStarry/account-service/scripts/db/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationsFS.FS, "*.sql")
	require.NoError(t, err)
	require.Contains(t, names, "000001_create_accounts.up.sql")
	require.Contains(t, names, "000001_create_accounts.down.sql")

	src, err := iofs.New(migrationsFS.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)
}

func TestUpConstraintNamesMatchRepo(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS.FS, "000001_create_accounts.up.sql")
	require.NoError(t, err)
	// the gorm repo maps these names to fields
	require.Contains(t, string(raw), "accounts_username_key")
	require.Contains(t, string(raw), "accounts_email_key")
}
