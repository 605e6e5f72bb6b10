package operation

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "filephile/internal/errors"
	"filephile/internal/fsys"
)

// MaxNameLength is the longest entry name accepted, in bytes
const MaxNameLength = 255

// ValidateName checks that name can be used as a single path component
func ValidateName(name string) error {
	return validateName("rename", name)
}

func validateName(op, name string) error {
	var reason string
	switch {
	case name == "":
		reason = "name is empty"
	case name == "." || name == "..":
		reason = fmt.Sprintf("%q is reserved", name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		reason = "name contains a path separator"
	case strings.ContainsRune(name, 0):
		reason = "name contains a NUL byte"
	case len(name) > MaxNameLength:
		reason = fmt.Sprintf("name is longer than %d bytes", MaxNameLength)
	default:
		return nil
	}
	return apperrors.NewOperationError(op, apperrors.InvalidName, name, fmt.Errorf("%s", reason))
}

// uniqueName returns the first free variant of path of the form
// name_(N).ext, counting from 1
func uniqueName(lister fsys.Lister, path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		// dotfiles like .bashrc have no extension
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_(%d)%s", stem, n, ext))
		if !lister.Exists(candidate) {
			return candidate
		}
	}
}
