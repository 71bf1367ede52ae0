package application

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Workspace is a temporary directory owned by one pipeline run
type Workspace struct {
	fs  afero.Fs
	dir string
}

// NewWorkspace creates a fresh directory under baseDir ("" means the
// system temp dir). The caller must Close it.
func NewWorkspace(fs afero.Fs, baseDir, id string) (*Workspace, error) {
	if baseDir != "" {
		if err := fs.MkdirAll(baseDir, 0755); err != nil {
			return nil, err
		}
	}
	dir, err := afero.TempDir(fs, baseDir, "paralyze-"+id+"-")
	if err != nil {
		return nil, err
	}
	return &Workspace{fs: fs, dir: dir}, nil
}

// Dir returns the workspace directory
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// Close removes the directory and everything in it
func (w *Workspace) Close() error {
	return w.fs.RemoveAll(w.dir)
}
