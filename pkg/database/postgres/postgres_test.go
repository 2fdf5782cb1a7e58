package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert seller: %w", &pq.Error{Code: "23505", Constraint: "sellers_code_key"})

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "sellers_code_key", constraint)

	_, ok = ForeignKeyViolation(err)
	assert.False(t, ok)
}

func TestForeignKeyViolation(t *testing.T) {
	err := &pq.Error{Code: "23503", Constraint: "products_category_id_fkey"}

	constraint, ok := ForeignKeyViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "products_category_id_fkey", constraint)
}

func TestViolation_PlainError(t *testing.T) {
	_, ok := UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
	_, ok = ForeignKeyViolation(nil)
	assert.False(t, ok)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "0001_accounts.sql", entries[0].Name())
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", cfg.DSN())
}
