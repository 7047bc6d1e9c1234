package source

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	// Read a file that exists
	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/panbanda/deadfiles")

	// Non-existent file should error
	_, err = src.Read("nonexistent.js")
	assert.Error(t, err)
}

func TestBillySource(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/src/index.js", []byte("require('./a');\n"), 0644))

	src := NewBilly(fs)

	content, err := src.Read("/src/index.js")
	require.NoError(t, err)
	assert.Equal(t, "require('./a');\n", string(content))

	_, err = src.Read("/src/missing.js")
	assert.Error(t, err)
}

func TestSourcesImplementContentSource(t *testing.T) {
	var _ ContentSource = NewFilesystem()
	var _ ContentSource = NewBilly(memfs.New())
}
