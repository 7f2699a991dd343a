package db_test

import (
	"testing"

	"github.com/kasuganosora/lootgrid/config"
	dbadapter "github.com/kasuganosora/lootgrid/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	db, err := dbadapter.Open(config.DatabaseConfig{Mode: dbadapter.ModeMemory})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE probe (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO probe (id) VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM probe").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOpen_UnknownMode(t *testing.T) {
	_, err := dbadapter.Open(config.DatabaseConfig{Mode: "embedded_xml"})
	assert.Error(t, err)
}
