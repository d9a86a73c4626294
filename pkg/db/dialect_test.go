package db

import (
	"testing"

	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectNames(t *testing.T) {
	cases := map[string]string{
		"postgres":   "postgres",
		"PostgreSQL": "postgres",
		"mysql":      "mysql",
		"sqlite3":    "sqlite",
	}
	for dbType, want := range cases {
		dialector, err := Dialect(config.Config{DBType: dbType, DBName: "tenantflow"})
		require.NoError(t, err, dbType)
		assert.Equal(t, want, dialector.Name(), dbType)
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	if _, err := Dialect(config.Config{DBType: "oracle"}); err == nil {
		t.Fatal("expected unsupported database type error")
	}
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	dsn := postgresDSN(config.Config{DBHost: "db", DBPort: "5432", DBUser: "app", DBName: "tenantflow"})
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "TimeZone=UTC")
}

func TestSQLiteFileDefault(t *testing.T) {
	assert.Equal(t, defaultSQLiteFile, sqliteFile(config.Config{}))
	assert.Equal(t, "local.db", sqliteFile(config.Config{DBName: "local.db"}))
}
