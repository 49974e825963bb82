// Package temp makes hierarchical temporary directories.
// Test contexts take their scratch space from here, so relocating every
// scratch directory a run creates only needs a change in one place.
package temp

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// Prefix for every directory created under the system temp dir.
const TmpDirPrefix = "testsched-tmp-"

// Create a new TempDir in directory dir with prefix string.
func NewTempDir(dir, prefix string) (*TempDir, error) {
	p, err := ioutil.TempDir(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &TempDir{Dir: p}, nil
}

// TempDir is a temporary directory, that may live under other temporary directories.
type TempDir struct {
	Dir string
}

// Create a new directory with a fixed name (this lets us structure our temp files)
func (d *TempDir) FixedDir(name string) (*TempDir, error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) {
		return nil, fmt.Errorf("temp.TempDir.FixedDir: Invalid name %q", name)
	}
	p := filepath.Join(d.Dir, name)
	if err := os.MkdirAll(p, 0777); err != nil {
		return nil, err
	}
	return &TempDir{p}, nil
}

// Create a new temporary directory under d
func (d *TempDir) TempDir(prefix string) (*TempDir, error) {
	return NewTempDir(d.Dir, prefix)
}

// Remove deletes d and everything below it. Removing a directory that is
// already gone is not an error.
func (d *TempDir) Remove() error {
	if d == nil || d.Dir == "" {
		return nil
	}
	return os.RemoveAll(d.Dir)
}

// TempDirDefault creates a TempDir rooted in the default temp dir
func TempDirDefault() (*TempDir, error) {
	tmpDir, err := NewTempDir("", TmpDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("temp.TempDirDefault: couldn't create temp dir: %v", err)
	}
	return tmpDir, nil
}
