package database

import (
	"io/fs"
	"strings"
	"testing"

	"profile-auth/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	t.Parallel()

	got := ConnString(utils.DatabaseConfig{
		Host: "db", Port: "5433", User: "app", Password: "pw", Name: "auth", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://app:pw@db:5433/auth?sslmode=disable", got)
}

func TestConnString_AwkwardCredentials(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		user     string
		password string
		dbName   string
	}{
		{name: "space and quote", user: "app", password: "p@ss word'"},
		{name: "key value lookalike", user: "app", password: "x sslmode=disable host=evil"},
		{name: "url delimiters", user: "a:b@c", password: "/?#%&=", dbName: "my db"},
		{name: "empty password", user: "app", password: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dbName := tc.dbName
			if dbName == "" {
				dbName = "auth"
			}

			cfg, err := pgxpool.ParseConfig(ConnString(utils.DatabaseConfig{
				Host: "db", Port: "5433", User: tc.user, Password: tc.password, Name: dbName, SSLMode: "disable",
			}))
			require.NoError(t, err)

			conn := cfg.ConnConfig
			assert.Equal(t, "db", conn.Host)
			assert.Equal(t, uint16(5433), conn.Port)
			assert.Equal(t, tc.user, conn.User)
			assert.Equal(t, tc.password, conn.Password)
			assert.Equal(t, dbName, conn.Database)
			assert.Nil(t, conn.TLSConfig)
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	raw, err := fs.ReadFile(migrations, files[0])
	require.NoError(t, err)

	sql := string(raw)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.True(t, strings.Contains(sql, "lower(email)"), "email uniqueness must be case-insensitive")
}
