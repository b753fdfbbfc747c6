package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid document", body: `{"id": 1, "name": "bob"}`},
		{name: "missing field", body: `{"id": 1}`, wantErr: true},
		{name: "wrong type", body: `{"id": "1", "name": "bob"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(userSchema), []byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Errors)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate([]byte(userSchema), []byte("<html></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation error")
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0644))

	assert.NoError(t, ValidateFile(path, []byte(`{"id": 2, "name": "amy"}`)))
	assert.Error(t, ValidateFile(filepath.Join(dir, "missing.json"), []byte(`{}`)))
}
