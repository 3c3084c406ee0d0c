package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionOrdering(t *testing.T) {
	levels := []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionShare, PermissionFullControl}

	for i, holder := range levels {
		for j, required := range levels {
			assert.Equal(t, i >= j, holder.Satisfies(required),
				"%s satisfies %s", holder, required)
		}
	}
}

func TestPermissionStringRoundtrip(t *testing.T) {
	for _, p := range []Permission{PermissionRead, PermissionWrite, PermissionDelete, PermissionShare, PermissionFullControl} {
		parsed, err := ParsePermission(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestParsePermissionRejectsUnknown(t *testing.T) {
	_, err := ParsePermission("admin")
	assert.Error(t, err)
}

func TestPermissionJSONUsesNames(t *testing.T) {
	raw, err := json.Marshal(PermissionFullControl)
	require.NoError(t, err)
	assert.Equal(t, `"full_control"`, string(raw))

	var p Permission
	require.NoError(t, json.Unmarshal([]byte(`"delete"`), &p))
	assert.Equal(t, PermissionDelete, p)

	assert.Error(t, json.Unmarshal([]byte(`"root"`), &p))
}
