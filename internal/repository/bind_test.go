package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindNamedScalar(t *testing.T) {
	bound, args, err := bindNamed("t.status = :q0p0", map[string]any{"q0p0": "new"})
	require.NoError(t, err)
	assert.Equal(t, "t.status = $1", bound)
	assert.Equal(t, []any{"new"}, args)
}

func TestBindNamedExpandsSlices(t *testing.T) {
	bound, args, err := bindNamed("t.status IN (:q0p0)", map[string]any{
		"q0p0": []any{"new", "pending"},
	})
	require.NoError(t, err)
	assert.Equal(t, "t.status IN ($1,$2)", bound)
	assert.Equal(t, []any{"new", "pending"}, args)
}

func TestBindNamedMixed(t *testing.T) {
	bound, args, err := bindNamed(
		"t.status IN (:q0p0) AND t.assignee = :q0p1",
		map[string]any{
			"q0p0": []any{"new", "in_progress"},
			"q0p1": int64(7),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "t.status IN ($1,$2) AND t.assignee = $3", bound)
	assert.Equal(t, []any{"new", "in_progress", int64(7)}, args)
}

func TestBindNamedMissingParameter(t *testing.T) {
	_, _, err := bindNamed("t.status = :q0p0", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q0p0")
}

func TestBindNamedLeavesOtherColonsAlone(t *testing.T) {
	bound, args, err := bindNamed("t.title LIKE :q0p0 AND t.created_at > '2024-01-01 10:30:00'", map[string]any{
		"q0p0": "%vpn%",
	})
	require.NoError(t, err)
	assert.Equal(t, "t.title LIKE $1 AND t.created_at > '2024-01-01 10:30:00'", bound)
	assert.Len(t, args, 1)
}
