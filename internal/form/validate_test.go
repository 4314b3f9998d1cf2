package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProject_Valid(t *testing.T) {
	assert.NoError(t, ValidateProject("my-project_v1.2", "/home/me/src"))
	assert.NoError(t, ValidateProject(" app ", `C:\code\app`))
	assert.NoError(t, ValidateProject("app", "d:/code/app"))
}

func TestValidateProject_Errors(t *testing.T) {
	tests := []struct {
		name      string
		project   string
		path      string
		wantField string
		wantCount int
		contains  string
	}{
		{"empty name", "", "/src", FieldName, 1, "cannot be empty"},
		{"bad characters", "my project!", "/src", FieldName, 1, "can only contain"},
		{"too long", strings.Repeat("a", 101), "/src", FieldName, 1, "too long"},
		{"empty path", "app", "  ", FieldPath, 1, "Source Code Path cannot be empty"},
		{"relative path", "app", "src/app", FieldPath, 1, "absolute path"},
		{"both invalid", "", "rel", FieldName, 2, "Project Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProject(tt.project, tt.path)
			require.Error(t, err)

			v, ok := AsValidation(err)
			require.True(t, ok)
			assert.Len(t, v, tt.wantCount)
			assert.Equal(t, tt.wantField, v.Field())
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidateProject_MaxLengthAllowed(t *testing.T) {
	assert.NoError(t, ValidateProject(strings.Repeat("a", 100), "/src"))
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("/"))
	assert.True(t, IsAbsolute(`Z:\`))
	assert.False(t, IsAbsolute(`C:`))
	assert.False(t, IsAbsolute("./x"))
	assert.False(t, IsAbsolute(`\\server\share`))
}

func TestValidationErrors_Messages(t *testing.T) {
	var empty ValidationErrors
	assert.Equal(t, "", empty.Field())

	err := ValidateProject("", "")
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Project Name cannot be empty.", "Source Code Path cannot be empty."}, v.Messages())
}
