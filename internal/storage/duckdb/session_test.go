package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvload/internal/probe"
	"csvload/internal/sqlgen"
	"csvload/internal/storage"
	"csvload/internal/storage/sqldb"
)

func TestSession_SequenceBackedKey(t *testing.T) {
	ctx := context.Background()
	s, err := storage.Open(ctx, storage.Config{Kind: "duckdb"})
	require.NoError(t, err)
	defer s.Close()

	cols := []probe.Column{
		{Position: 0, Name: "name", Type: probe.Text},
		{Position: 1, Name: "score", Type: probe.Float},
		{Position: 2, Name: "seen", Type: probe.Date},
	}

	// Twice: the second run must drop and recreate table and sequence.
	for i := 0; i < 2; i++ {
		for _, stmt := range sqlgen.BuildSchema(s.Dialect(), "scores", cols).Statements {
			_, err := s.Exec(ctx, stmt)
			require.NoError(t, err, stmt)
		}
	}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	ib := sqlgen.NewInsertBuilder(s.Dialect(), "scores", cols)
	for _, row := range [][]string{{"a", "1.5", "2024-01-01"}, {"b", "", ""}} {
		_, err := tx.Exec(ctx, ib.Build(row))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit(ctx))

	var ids []int64
	rows, err := s.(*sqldb.Session).DB().QueryContext(ctx, `SELECT id FROM scores ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2}, ids)
}
