package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "stash",
		Password: "secret",
		Name:     "cmdstash",
		Host:     "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.example.com port=5433 user=stash dbname=cmdstash password=secret sslmode=disable", dsn)
}

func TestBuildPostgresDSNDefaultsAndOverride(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "stash",
		Name: "cmdstash",
		Options: map[string]string{
			"sslmode":         "require",
			"connect_timeout": "5",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "host=localhost port=5432 user=stash dbname=cmdstash connect_timeout=5 sslmode=require", dsn)
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{User: "stash"})
	require.Error(t, err)
}

func TestBuildPostgresDSNPassthrough(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://u:p@host/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@host/db", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "stash",
		Password: "secret",
		Name:     "cmdstash",
		Host:     "db.example.com",
		Port:     3307,
	})
	require.NoError(t, err)
	require.Equal(t, "stash:secret@tcp(db.example.com:3307)/cmdstash?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "stash", Name: "cmdstash"})
	require.NoError(t, err)
	require.Equal(t, "stash@tcp(127.0.0.1:3306)/cmdstash?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	_, err := buildMySQLDSN(Config{Name: "cmdstash"})
	require.Error(t, err)
}
