package migrations_test

import (
	"context"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamline/backend/migrations"
	"github.com/roamline/backend/testutil"
)

// TestMigrationsRoundTrip applies every migration, rolls them all back, and
// applies them again. This catches down migrations that drift out of sync
// with their up counterparts.
func TestMigrationsRoundTrip(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = provider.Up(ctx)
	require.NoError(t, err)

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err)

	results, err := provider.Up(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, version, int64(0))
}
