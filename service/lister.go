package service

import (
	"context"
	"sort"
	"strings"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/remote"
)

// ListDirectory fetches a remote directory and turns it into displayable entries:
// entries without a name or a reported type are dropped, as are hidden entries.
// Directories come first, then everything is ordered by name, case-insensitively.
func ListDirectory(ctx context.Context, session remote.Session, path string) ([]entity.FileSystemEntry, error) {
	rawEntries, err := session.ListDirectory(ctx, path)
	if err != nil {
		return nil, &entity.ListingError{Path: path, Cause: err}
	}
	entries := make([]entity.FileSystemEntry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		if raw.Name == "" || raw.Type == remote.ResourceUnknown {
			continue
		}
		if strings.HasPrefix(raw.Name, ".") {
			continue
		}
		entries = append(entries, entity.NewFileSystemEntry(
			raw.Name,
			remote.JoinPath(path, raw.Name),
			raw.Type == remote.ResourceDirectory,
			raw.Size,
			raw.ModTime,
		))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDirectory != entries[j].IsDirectory {
			return entries[i].IsDirectory
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}
