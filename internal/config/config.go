// Package config reads keepsake.yml, the project file naming the
// repository an inspector reads from.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sake/internal/repoerr"
)

// FileName is the project configuration file name.
const FileName = "keepsake.yml"

// FileScheme is the only repository scheme supported.
const FileScheme = "file://"

// Keepsake is the decoded keepsake.yml.
type Keepsake struct {
	Repository string `yaml:"repository"`
	Storage    string `yaml:"storage,omitempty"`

	// Dir is the directory holding the file. Relative repository paths
	// are resolved against it. Empty when decoded from bytes.
	Dir string `yaml:"-"`
}

// Load reads and decodes path.
func Load(path string) (*Keepsake, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, repoerr.NewIOError(path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes keepsake.yml contents.
func Parse(data []byte) (*Keepsake, error) {
	var cfg Keepsake
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Root returns the repository root directory.
//
// The location must use the file:// scheme. Relative paths are joined to
// Dir. Any other location, including an empty one, is an
// InvalidRepositoryLocation error.
func (k *Keepsake) Root() (string, error) {
	loc := k.Repository
	if !strings.HasPrefix(loc, FileScheme) {
		return "", repoerr.NewInvalidRepositoryError(loc)
	}

	path := strings.TrimPrefix(loc, FileScheme)
	if path == "" {
		return "", repoerr.NewInvalidRepositoryError(loc)
	}
	if !filepath.IsAbs(path) && k.Dir != "" {
		path = filepath.Join(k.Dir, path)
	}
	return path, nil
}

// Find looks for keepsake.yml in start and each parent directory.
// It returns the path of the nearest one, or an IO error wrapping
// fs.ErrNotExist when none exists up to the filesystem root.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", repoerr.NewIOError(start, err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", repoerr.NewIOError(candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", repoerr.NewIOError(filepath.Join(start, FileName),
				fmt.Errorf("no %s found in %s or any parent: %w", FileName, start, fs.ErrNotExist))
		}
		dir = parent
	}
}
