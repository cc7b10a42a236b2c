package cli

import (
	"os"
	"path/filepath"
)

// Paths locates the CLI's files under ~/.midjourney.
type Paths struct {
	HomeDir string
}

// NewPaths resolves the user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.midjourney.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.midjourney/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// HistoryDir returns the history database directory of a context.
func (p *Paths) HistoryDir(context string) string {
	return filepath.Join(p.BaseDir(), "history", context)
}

// ImagesDir returns the default image directory.
func (p *Paths) ImagesDir() string {
	return filepath.Join(p.BaseDir(), "images")
}
