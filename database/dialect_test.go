package database

import (
	"testing"

	"github.com/sisu-network/sentinel/config"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	pg := dialect{driver: config.DbDriverPostgres}
	require.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))
	require.Equal(t, "INSERT INTO chains (chain, synced_state) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		pg.insertIgnore("chains", []string{"chain", "synced_state"}))

	mysql := dialect{driver: config.DbDriverMysql}
	require.Equal(t, "SELECT a FROM t WHERE b = ?", mysql.rebind("SELECT a FROM t WHERE b = ?"))
	require.Equal(t, "INSERT IGNORE INTO chains (chain) VALUES (?)", mysql.insertIgnore("chains", []string{"chain"}))

	sqlite := dialect{driver: config.DbDriverSqlite}
	require.Equal(t, "INSERT OR IGNORE INTO chains (chain) VALUES (?)", sqlite.insertIgnore("chains", []string{"chain"}))
}
