package domain

import (
	"io/fs"
	"time"
)

// EntryKind classifies a filesystem object
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindSymlink
	KindOther
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// Entry is one filesystem object of a directory listing, as seen when the
// listing was taken. It goes stale when the directory changes on disk.
type Entry struct {
	Name    string
	Path    string // absolute path, the entry's identity
	Kind    EntryKind
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
	Target  string // symlink target, if any
	// TargetIsDir is set for symlinks that point at a directory
	TargetIsDir bool
}

// IsDir reports whether the entry can be entered
func (e Entry) IsDir() bool {
	return e.Kind == KindDir || (e.Kind == KindSymlink && e.TargetIsDir)
}

// IsHidden reports whether the entry is a dotfile
func (e Entry) IsHidden() bool {
	return len(e.Name) > 0 && e.Name[0] == '.'
}

// OperationKind names a filesystem mutation
type OperationKind string

const (
	OpCopy     OperationKind = "copy"
	OpMove     OperationKind = "move"
	OpDelete   OperationKind = "delete"
	OpRename   OperationKind = "rename"
	OpCreate   OperationKind = "create"
	OpExternal OperationKind = "run-external"
	OpUndo     OperationKind = "undo"
)

// OperationProgress represents how far a running operation has got
type OperationProgress struct {
	ID      string
	Kind    OperationKind
	Done    int
	Total   int
	Current string // path of the item being processed
}
