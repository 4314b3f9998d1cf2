package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsCodeFile(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		want bool
	}{
		{"main.py", true},
		{"App.JSX", true},
		{"index.Html", true},
		{"lib.min.js", true},
		{"header.h", true},
		{".h", true},
		{"notes.txt", false},
		{"Makefile", false},
		{"c", false},
		{"trailing.", false},
		{"archive.tar.gz", false},
		{"main.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsCodeFile(tt.name))
		})
	}
}

func TestPolicy_ExclusionSetsAreIndependent(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.HardExcluded("dist"))
	assert.False(t, p.SoftExcluded("dist"))
	assert.True(t, p.HardExcluded("build"))
	assert.False(t, p.SoftExcluded("build"))

	assert.True(t, p.SoftExcluded(".idea"))
	assert.False(t, p.HardExcluded(".idea"))

	assert.True(t, p.HardExcluded("node_modules"))
	assert.True(t, p.SoftExcluded("node_modules"))
}

func TestPolicyFromLists_NormalizesExtensions(t *testing.T) {
	p := PolicyFromLists(nil, nil, []string{".GO", " rs ", ""})

	assert.True(t, p.IsCodeFile("main.go"))
	assert.True(t, p.IsCodeFile("lib.RS"))
	assert.Equal(t, []string{"go", "rs"}, p.CodeExtensions.Sorted())
}

func TestDefaultLists_AreCopies(t *testing.T) {
	hard := DefaultHardExclude()
	hard[0] = "changed"

	assert.Equal(t, "node_modules", DefaultHardExclude()[0])
	assert.Len(t, DefaultSoftExclude(), 6)
	assert.Len(t, DefaultCodeExtensions(), 12)
}
