package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileSystemEntry is a single file or directory of a remote listing.
// Two listings of the same directory produce entries with distinct IDs.
type FileSystemEntry struct {
	ID          uuid.UUID
	Name        string
	Path        string // absolute, slash separated, rooted at "/"
	IsDirectory bool
	Size        *int64
	ModifiedAt  *time.Time
}

// NewFileSystemEntry creates an entry with a fresh surrogate id
func NewFileSystemEntry(name, path string, isDirectory bool, size *int64, modifiedAt *time.Time) FileSystemEntry {
	return FileSystemEntry{
		ID:          uuid.New(),
		Name:        name,
		Path:        path,
		IsDirectory: isDirectory,
		Size:        size,
		ModifiedAt:  modifiedAt,
	}
}

// Equal compares entries by identity, not by path
func (e FileSystemEntry) Equal(other FileSystemEntry) bool {
	return e.ID == other.ID
}

func (e FileSystemEntry) String() string {
	if e.IsDirectory {
		return fmt.Sprintf("%s/", e.Path)
	}
	return e.Path
}
