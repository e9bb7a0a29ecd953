package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLevelOrdering(t *testing.T) {
	assert.True(t, LevelNone < LevelRead)
	assert.True(t, LevelRead < LevelWrite)
	assert.True(t, LevelWrite < LevelAdmin)
}

func TestAccessLevelCapabilities(t *testing.T) {
	assert.False(t, LevelNone.CanRead())
	assert.False(t, LevelNone.CanWrite())
	assert.True(t, LevelRead.CanRead())
	assert.False(t, LevelRead.CanWrite())
	assert.True(t, LevelWrite.CanRead())
	assert.True(t, LevelWrite.CanWrite())
	assert.True(t, LevelAdmin.CanRead())
	assert.True(t, LevelAdmin.CanWrite())
}

func TestAccessLevelRoundTrip(t *testing.T) {
	for _, level := range AccessLevelValues() {
		parsed, err := AccessLevelString(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := AccessLevelString("superuser")
	assert.Error(t, err)
}

func TestDecisionZeroValueIsDeny(t *testing.T) {
	var d Decision
	assert.Equal(t, Deny, d)
	assert.False(t, d.CanRead())
	assert.False(t, d.CanWrite())

	// Deny is not the same as a granted none.
	assert.NotEqual(t, Deny, Grant(LevelNone))
}

func TestDecisionJSON(t *testing.T) {
	out, err := json.Marshal(Grant(LevelWrite))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Allowed":true,"Level":"write"}`, string(out))
}
