package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMaps(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE f (name TEXT, price REAL, n INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO f VALUES ('JFK', 99.5, 3), ('LAX', 120.0, 7)`)
	require.NoError(t, err)

	rows, err := QueryMaps(context.Background(), db, "SELECT name, price, n FROM f ORDER BY name")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "JFK", rows[0]["name"])
	assert.Equal(t, 99.5, rows[0]["price"])
	assert.Equal(t, int64(3), rows[0]["n"])
	assert.Equal(t, "LAX", rows[1]["name"])
}

func TestQueryMapsEmptyIsNotNil(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE f (name TEXT)`)
	require.NoError(t, err)

	rows, err := QueryMaps(context.Background(), db, "SELECT name FROM f")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Len(t, rows, 0)
}

func TestQueryMapSingle(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE f (name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO f VALUES ('ORD')`)
	require.NoError(t, err)

	row, err := QueryMap(context.Background(), db, "SELECT name FROM f")
	require.NoError(t, err)
	assert.Equal(t, "ORD", row["name"])

	_, err = QueryMap(context.Background(), db, "SELECT name FROM f WHERE name = 'nope'")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
