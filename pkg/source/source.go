package source

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// BillySource reads files from a billy filesystem such as an in-memory tree.
// It is safe for concurrent use by multiple goroutines.
type BillySource struct {
	fs billy.Filesystem
	mu sync.Mutex
}

// NewBilly creates a source that reads from fs.
func NewBilly(fs billy.Filesystem) *BillySource {
	return &BillySource{fs: fs}
}

// Read implements ContentSource.
func (b *BillySource) Read(path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return util.ReadFile(b.fs, path)
}
