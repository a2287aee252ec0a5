package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestListDirectory(t *testing.T) {
	session := newFakeSession()
	mod := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	session.entries["/DCIM"] = []remote.RawEntry{
		{Name: "zebra.jpg", Type: remote.ResourceRegular, Size: ptr(int64(2048)), ModTime: &mod},
		{Name: "Camera", Type: remote.ResourceDirectory},
		{Name: ".thumbnails", Type: remote.ResourceDirectory},
		{Name: "", Type: remote.ResourceRegular},
		{Name: "untyped.bin"},
		{Name: "apple.JPG", Type: remote.ResourceRegular, Size: ptr(int64(1))},
		{Name: "archive", Type: remote.ResourceDirectory},
		{Name: "link", Type: remote.ResourceSymlink},
	}

	entries, err := ListDirectory(context.Background(), session, "/DCIM")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"archive", "Camera", "apple.JPG", "link", "zebra.jpg"}, names)
	assert.True(t, entries[0].IsDirectory)
	assert.True(t, entries[1].IsDirectory)
	assert.False(t, entries[3].IsDirectory)
	assert.Equal(t, "/DCIM/Camera", entries[1].Path)
	assert.Equal(t, int64(2048), *entries[4].Size)
	assert.Equal(t, mod, *entries[4].ModifiedAt)
	assert.Nil(t, entries[1].Size)

	again, err := ListDirectory(context.Background(), session, "/DCIM")
	require.NoError(t, err)
	assert.False(t, entries[0].Equal(again[0]), "every listing gets fresh identities")
}

func TestListDirectory_Root(t *testing.T) {
	session := newFakeSession()
	session.entries["/"] = []remote.RawEntry{{Name: "Photos", Type: remote.ResourceDirectory}}
	entries, err := ListDirectory(context.Background(), session, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/Photos", entries[0].Path)
}

func TestListDirectory_Error(t *testing.T) {
	session := newFakeSession()
	cause := errors.New("access denied")
	session.listErr = cause
	entries, err := ListDirectory(context.Background(), session, "/private")
	assert.Nil(t, entries)
	var listingErr *entity.ListingError
	require.ErrorAs(t, err, &listingErr)
	assert.Equal(t, "/private", listingErr.Path)
	assert.ErrorIs(t, err, cause)
}
