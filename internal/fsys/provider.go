// Package fsys is the filesystem access provider. The navigation engine and
// the operation executor depend only on the Provider interface.
package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
)

// Lister lists directories. It is the part of Provider navigation needs.
type Lister interface {
	List(path string) ([]domain.Entry, error)
	Stat(path string) (domain.Entry, error)
	Exists(path string) bool
}

// Provider is the full set of filesystem operations the core uses
type Provider interface {
	Lister
	Copy(src, dst string) error
	Move(src, dst string) error
	Delete(path string) error
	Rename(src, dst string) error
	CreateFile(path string) error
	CreateDir(path string) error
}

// OS is the Provider for the local filesystem
type OS struct{}

// NewOS creates a local filesystem provider
func NewOS() *OS {
	return &OS{}
}

// wrap classifies err into the taxonomy
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *apperrors.OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return apperrors.NewOperationError(op, apperrors.Classify(err), path, err)
}

func entryFromInfo(path string, info fs.FileInfo) domain.Entry {
	e := domain.Entry{
		Name:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		e.Kind = domain.KindSymlink
		if target, err := os.Readlink(path); err == nil {
			e.Target = target
		}
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			e.TargetIsDir = true
		}
	case info.IsDir():
		e.Kind = domain.KindDir
	case info.Mode().IsRegular():
		e.Kind = domain.KindFile
	default:
		e.Kind = domain.KindOther
	}
	return e
}

// List returns the entries of a directory in directory order
func (p *OS) List(path string) ([]domain.Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, wrap("list", path, err)
	}
	entries := make([]domain.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entries = append(entries, entryFromInfo(filepath.Join(path, de.Name()), info))
	}
	return entries, nil
}

// Stat describes a single path without following a final symlink
func (p *OS) Stat(path string) (domain.Entry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return domain.Entry{}, wrap("stat", path, err)
	}
	return entryFromInfo(path, info), nil
}

// Exists reports whether anything exists at path
func (p *OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (p *OS) mustNotExist(op, path string) error {
	if p.Exists(path) {
		return apperrors.NewOperationError(op, apperrors.AlreadyExists, path, nil)
	}
	return nil
}

// Copy copies src to dst recursively. dst must not exist.
func (p *OS) Copy(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return wrap("copy", src, err)
	}
	if err := p.mustNotExist("copy", dst); err != nil {
		return err
	}
	if info.IsDir() && isWithin(dst, src) {
		return apperrors.NewOperationError("copy", apperrors.InvalidName, dst,
			fmt.Errorf("cannot copy a directory into itself"))
	}
	return wrap("copy", src, copyTree(src, dst, info))
}

func copyTree(src, dst string, info fs.FileInfo) error {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		if err := os.Mkdir(dst, info.Mode().Perm()|0700); err != nil {
			return err
		}
		children, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, child := range children {
			childInfo, err := child.Info()
			if err != nil {
				return err
			}
			if err := copyTree(filepath.Join(src, child.Name()), filepath.Join(dst, child.Name()), childInfo); err != nil {
				return err
			}
		}
		return os.Chmod(dst, info.Mode().Perm())
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Move moves src to dst, copying across devices. dst must not exist.
func (p *OS) Move(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		return wrap("move", src, err)
	}
	if err := p.mustNotExist("move", dst); err != nil {
		return err
	}
	if isWithin(dst, src) {
		return apperrors.NewOperationError("move", apperrors.InvalidName, dst,
			fmt.Errorf("cannot move a directory into itself"))
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return wrap("move", src, err)
	}
	if err := p.Copy(src, dst); err != nil {
		return err
	}
	return wrap("move", src, os.RemoveAll(src))
}

// Delete removes path, recursively for directories
func (p *OS) Delete(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return wrap("delete", path, err)
	}
	if info.IsDir() {
		return wrap("delete", path, os.RemoveAll(path))
	}
	return wrap("delete", path, os.Remove(path))
}

// Rename renames src to dst. dst must not exist.
func (p *OS) Rename(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		return wrap("rename", src, err)
	}
	if err := p.mustNotExist("rename", dst); err != nil {
		return err
	}
	return wrap("rename", src, os.Rename(src, dst))
}

// CreateFile creates an empty file, never overwriting
func (p *OS) CreateFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return wrap("create", path, err)
	}
	return wrap("create", path, f.Close())
}

// CreateDir creates a directory, never overwriting
func (p *OS) CreateDir(path string) error {
	return wrap("create", path, os.Mkdir(path, 0755))
}

// isWithin reports whether path is root or below it
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
