package staging

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CopyTree copies every entry of src into dst, creating dst if needed.
//
// A top-level entry whose name equals filepath.Base(dst) is skipped so a
// destination nested inside src is never copied into itself. Directories are
// merged into existing ones and same-named files are overwritten.
func CopyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create %s", dst)
	}
	c, err := newCopier(dst)
	if err != nil {
		return err
	}
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", src)
	}
	c.active[root] = true

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", src)
	}

	self := filepath.Base(dst)
	for _, e := range entries {
		if e.Name() == self {
			logrus.Debugf("Skipping %s (staging directory)", filepath.Join(src, e.Name()))
			continue
		}
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if err := c.copyEntry(s, d); err != nil {
			return err
		}
	}
	return nil
}

// MergeDir copies the directory src into dst with merge-overwrite semantics.
func MergeDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", src)
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", dst)
	}
	c, err := newCopier(dst)
	if err != nil {
		return err
	}
	return c.copyDir(src, dst, info)
}

// copier tracks the directories on the current copy path. Symlinks are
// followed, so a directory that is already being copied, or that resolves
// inside the destination, is skipped instead of recursing forever.
type copier struct {
	dst    string
	active map[string]bool
}

func newCopier(dst string) (*copier, error) {
	resolved, err := filepath.EvalSymlinks(dst)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", dst)
	}
	return &copier{dst: resolved, active: map[string]bool{}}, nil
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyEntry follows symlinks, so the staged tree holds real files.
func (c *copier) copyEntry(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", src)
	}
	if info.IsDir() {
		return c.copyDir(src, dst, info)
	}
	return copyFile(src, dst, info)
}

func (c *copier) copyDir(src, dst string, info fs.FileInfo) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", src)
	}
	if within(resolved, c.dst) {
		logrus.Warnf("Skipping %s (resolves inside %s)", src, c.dst)
		return nil
	}
	if c.active[resolved] {
		logrus.Warnf("Skipping %s (symlink loop back to %s)", src, resolved)
		return nil
	}
	c.active[resolved] = true
	defer delete(c.active, resolved)

	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", dst)
	}
	// dst may predate this copy with tighter permissions.
	if err := os.Chmod(dst, info.Mode().Perm()|0o700); err != nil {
		return errors.Wrapf(err, "unable to make %s writable", dst)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", src)
	}
	for _, e := range entries {
		if err := c.copyEntry(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	// Applied last so a read-only source directory does not block the copy.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "unable to copy permissions to %s", dst)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, "unable to change timestamp for %s", dst)
	}
	return nil
}

// copyFile copies content, permission bits and modification time.
func copyFile(src, dst string, info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		logrus.Debugf("Skipping %s (not a regular file)", src)
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", src)
	}
	defer in.Close()

	// A read-only file from an earlier copy would make OpenFile fail.
	if di, err := os.Lstat(dst); err == nil && !di.IsDir() {
		if err := os.Remove(dst); err != nil {
			return errors.Wrapf(err, "unable to replace %s", dst)
		}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "unable to write %s", dst)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "unable to copy permissions to %s", dst)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, "unable to change timestamp for %s", dst)
	}
	return nil
}
