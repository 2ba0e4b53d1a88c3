package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDatastoreDriver(t *testing.T) {
	assert.Equal(t, "pgx", normalizeDatastoreDriver("postgres"))
	assert.Equal(t, "pgx", normalizeDatastoreDriver("PostgreSQL"))
	assert.Equal(t, "pgx", normalizeDatastoreDriver("pgx"))
	assert.Equal(t, "postgres", normalizeDatastoreDriver("pq"))
	assert.Equal(t, "sqlite", normalizeDatastoreDriver(" SQLite "))
	assert.Equal(t, "", normalizeDatastoreDriver(""))
}

func TestNormalizeDatastoreDSN(t *testing.T) {
	const simple = "prefer_simple_protocol=true&statement_cache_capacity=0&default_query_exec_mode=simple_protocol"

	assert.Equal(t, "postgres://u@h/db?"+simple, normalizeDatastoreDSN("pgx", "postgres://u@h/db"))
	assert.Equal(t, "postgres://u@h/db?sslmode=disable&"+simple, normalizeDatastoreDSN("pgx", "postgres://u@h/db?sslmode=disable"))
	assert.Equal(t, "postgres://u@h/db?"+simple, normalizeDatastoreDSN("pgx", "postgres://u@h/db?"))
	assert.Equal(t,
		"postgres://u@h/db?prefer_simple_protocol=false&statement_cache_capacity=0&default_query_exec_mode=simple_protocol",
		normalizeDatastoreDSN("pgx", "postgres://u@h/db?prefer_simple_protocol=false"))
	assert.Equal(t, "postgres://u@h/db", normalizeDatastoreDSN("postgres", "postgres://u@h/db"))
	assert.Equal(t, "", normalizeDatastoreDSN("pgx", ""))
}

func TestOpenRequiresConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(context.Background(), Config{Driver: "sqlite", DSN: "file.db"})
	assert.ErrorContains(t, err, "unsupported datastore driver")
}
