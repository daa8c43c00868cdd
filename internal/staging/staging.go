// Package staging assembles the throwaway build context handed to the
// container engine.
//
// A Dir is created empty at the start of every run and must be released with
// Remove on every exit path:
//
//	stage, err := staging.Create(filepath.Join(root, "build_temp"))
//	if err != nil {
//	    return err
//	}
//	defer stage.Remove()
package staging

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Dir is a staging directory owned by a single run.
type Dir struct {
	Path string
}

// Create removes any stale directory at path and creates it empty.
func Create(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", path)
	}
	if _, err := os.Lstat(abs); err == nil {
		logrus.Debugf("Removing stale staging directory %s", abs)
		if err := forceRemove(abs); err != nil {
			return nil, errors.Wrapf(err, "unable to remove stale staging directory %s", abs)
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create staging directory %s", abs)
	}
	return &Dir{Path: abs}, nil
}

// Populate copies the contents of src into the staging directory.
func (d *Dir) Populate(src string) error {
	return CopyTree(src, d.Path)
}

// Merge copies the directory src into sub inside the staging directory.
// It reports false without error when src does not exist.
func (d *Dir) Merge(src, sub string) (bool, error) {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "unable to stat %s", src)
	}
	if err := MergeDir(src, filepath.Join(d.Path, sub)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the staging directory and everything in it. Safe to call
// more than once.
func (d *Dir) Remove() error {
	if d == nil || d.Path == "" {
		return nil
	}
	if err := forceRemove(d.Path); err != nil {
		return errors.Wrapf(err, "unable to remove staging directory %s", d.Path)
	}
	return nil
}

// forceRemove is os.RemoveAll that also copes with read-only directories
// copied from the source tree.
func forceRemove(path string) error {
	if err := os.RemoveAll(path); err == nil {
		return nil
	}
	_ = filepath.WalkDir(path, func(p string, e fs.DirEntry, err error) error {
		if err == nil && e.IsDir() {
			_ = os.Chmod(p, 0o700)
		}
		return nil
	})
	return os.RemoveAll(path)
}
