package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSettings = `{
  "storagePath": {"absolutePath": "/data/owl", "pendingAbsolutePath": null},
  "menuBarRestriction": {"restricted": true, "maxCharacters": 12},
  "isDockIconVisible": true
}`

func TestDecodeValid(t *testing.T) {
	s, err := Decode([]byte(validSettings))
	require.NoError(t, err)
	assert.Equal(t, "/data/owl", s.StoragePath.AbsolutePath)
	assert.Nil(t, s.StoragePath.PendingAbsolutePath)
	assert.True(t, s.MenuBarRestriction.Restricted)
	assert.Equal(t, 12, s.MenuBarRestriction.MaxCharacters)
	assert.True(t, s.IsDockIconVisible)
}

func TestDecodePendingPath(t *testing.T) {
	s, err := Decode([]byte(`{
  "storagePath": {"absolutePath": "/old", "pendingAbsolutePath": "/new"},
  "menuBarRestriction": {"restricted": false, "maxCharacters": 10},
  "isDockIconVisible": false
}`))
	require.NoError(t, err)
	require.NotNil(t, s.StoragePath.PendingAbsolutePath)
	assert.Equal(t, "/new", *s.StoragePath.PendingAbsolutePath)
}

func TestDecodeRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{
			name:  "not json",
			input: `{{`,
			field: "$",
		},
		{
			name:  "top level null",
			input: `null`,
			field: "$",
		},
		{
			name:  "missing isDockIconVisible",
			input: `{"storagePath": {"absolutePath": "/a", "pendingAbsolutePath": null}, "menuBarRestriction": {"restricted": false, "maxCharacters": 10}}`,
			field: "isDockIconVisible",
		},
		{
			name:  "null isDockIconVisible",
			input: `{"storagePath": {"absolutePath": "/a", "pendingAbsolutePath": null}, "menuBarRestriction": {"restricted": false, "maxCharacters": 10}, "isDockIconVisible": null}`,
			field: "isDockIconVisible",
		},
		{
			name:  "missing pendingAbsolutePath",
			input: `{"storagePath": {"absolutePath": "/a"}, "menuBarRestriction": {"restricted": false, "maxCharacters": 10}, "isDockIconVisible": false}`,
			field: "storagePath.pendingAbsolutePath",
		},
		{
			name:  "empty absolutePath",
			input: `{"storagePath": {"absolutePath": "", "pendingAbsolutePath": null}, "menuBarRestriction": {"restricted": false, "maxCharacters": 10}, "isDockIconVisible": false}`,
			field: "storagePath.absolutePath",
		},
		{
			name:  "wrong type for maxCharacters",
			input: `{"storagePath": {"absolutePath": "/a", "pendingAbsolutePath": null}, "menuBarRestriction": {"restricted": false, "maxCharacters": "ten"}, "isDockIconVisible": false}`,
			field: "menuBarRestriction.maxCharacters",
		},
		{
			name:  "menuBarRestriction not an object",
			input: `{"storagePath": {"absolutePath": "/a", "pendingAbsolutePath": null}, "menuBarRestriction": 3, "isDockIconVisible": false}`,
			field: "menuBarRestriction",
		},
		{
			name:  "missing storagePath",
			input: `{"menuBarRestriction": {"restricted": false, "maxCharacters": 10}, "isDockIconVisible": false}`,
			field: "storagePath",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
