//go:build !sqlite

package concepts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreSQLiteUnavailableWithoutTag(t *testing.T) {
	_, err := NewStore("sqlite", "archetypon.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}
