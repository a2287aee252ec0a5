package service

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/lib"
	"github.com/m-manu/picstream/media"
)

const portableImageExt = ".jpg"

// still image formats most servers and viewers can't display
var proprietaryImageExts = map[string]struct{}{
	".heic": {},
	".heif": {},
}

// ResolveFilename names the remote file of a media item: its original name when the
// source knows it, a generated one otherwise
func ResolveFilename(ctx context.Context, source media.Source, ref entity.MediaRef) string {
	name, ok := source.OriginalFilename(ctx, ref)
	name = strings.TrimSpace(name)
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return FallbackFilename(ref)
	}
	return portableName(name)
}

func portableName(name string) string {
	if _, proprietary := proprietaryImageExts[lib.GetFileExt(name)]; proprietary {
		return strings.TrimSuffix(name, path.Ext(name)) + portableImageExt
	}
	return name
}

// FallbackFilename generates a name like IMG_1a2b3c4d.jpg from the media type
func FallbackFilename(ref entity.MediaRef) string {
	var prefix, ext string
	switch ref.Type {
	case entity.MediaImage:
		prefix, ext = "IMG", portableImageExt
	case entity.MediaVideo:
		prefix, ext = "VID", ".mp4"
		if ref.HighFrameRate {
			ext = ".mov"
		}
	default:
		prefix, ext = "MEDIA", ".dat"
	}
	return prefix + "_" + shortID() + ext
}

// withDisambiguator inserts a random suffix before the extension: a.jpg -> a_1a2b3c4d.jpg
func withDisambiguator(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + shortID() + ext
}

func shortID() string {
	return uuid.NewString()[:8]
}
