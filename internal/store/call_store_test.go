package store

import (
	"strings"
	"testing"

	"github.com/didi/gendry/builder"
	"github.com/stretchr/testify/require"

	"github.com/callsight/callsight/internal/pkg/dbutil"
)

func TestCallFilterCompilesToParameterizedQuery(t *testing.T) {
	where := CallFilter{CallID: 42}.where()
	where["_limit"] = []uint{1}

	query, args, err := builder.BuildSelect("calls_metadata", where, []string{"call_id"})
	require.NoError(t, err)
	query, args = dbutil.Finalize(query, args)

	require.Contains(t, query, "SELECT call_id FROM calls_metadata")
	require.Contains(t, query, "call_id=$1")
	// gendry pads a zero offset, so the limit compiles to two placeholders.
	require.Contains(t, query, "LIMIT $2 OFFSET $3")
	require.Len(t, args, 3)
	require.Equal(t, int64(42), args[0])
	require.Equal(t, uint(1), args[1])
	require.NotContains(t, query, "42")
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements(384)
	require.Len(t, stmts, 6)
	require.Contains(t, stmts[0], "CREATE EXTENSION IF NOT EXISTS vector")

	joined := strings.Join(stmts, "\n")
	require.Contains(t, joined, "vector(384)")
	require.Contains(t, joined, "call_id BIGINT PRIMARY KEY")
	require.Contains(t, joined, "vector_ip_ops")
	require.Contains(t, joined, "lists = 1024")
	require.Contains(t, joined, "VARCHAR(2048)")

	for _, stmt := range stmts {
		require.Contains(t, stmt, "IF NOT EXISTS")
	}
}

func TestSchemaStatementsDimensionFlowsThrough(t *testing.T) {
	joined := strings.Join(schemaStatements(8), "\n")
	require.Contains(t, joined, "vector(8)")
	require.NotContains(t, joined, "vector(384)")
}
