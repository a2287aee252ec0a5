package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	set "github.com/deckarep/golang-set/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/logging"
)

// LocalSource serves media items stored on the local disk; a ref's Locator is an absolute file path.
type LocalSource struct {
	log *logging.Logger
}

// NewLocalSource returns a new LocalSource.
func NewLocalSource(log *logging.Logger) *LocalSource {
	return &LocalSource{log: log}
}

// DiscoverOptions control how command line arguments are expanded into media items
type DiscoverOptions struct {
	Recursive bool
	Excluded  set.Set[string] // base names of files and directories to skip
}

// Discover expands files, directories and glob patterns into media references,
// in argument order, without duplicates. Hidden files and anything that isn't
// an image or a video are skipped.
func (l *LocalSource) Discover(args []string, opts DiscoverOptions) ([]entity.MediaRef, error) {
	if opts.Excluded == nil {
		opts.Excluded = set.NewThreadUnsafeSet[string]()
	}
	seen := set.NewThreadUnsafeSet[string]()
	refs := make([]entity.MediaRef, 0, len(args))
	add := func(path string) {
		if seen.Contains(path) {
			return
		}
		seen.Add(path)
		mediaType, err := Classify(path)
		if err != nil {
			l.log.Warnf("skipping %q: %v", path, err)
			return
		}
		if mediaType == entity.MediaUnknown {
			l.log.Debugf("skipping %q: not an image or a video", path)
			return
		}
		refs = append(refs, entity.MediaRef{Locator: path, Type: mediaType})
	}

	for _, arg := range args {
		matches, err := expandPattern(arg)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("can't read %q: %w", match, err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}
			files, err := walk(match, opts, l.log)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		}
	}
	return refs, nil
}

func expandPattern(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", pattern, err)
		}
		return []string{absPath}, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	hiddenWanted := strings.HasPrefix(filepath.Base(pattern), ".")
	absMatches := make([]string, 0, len(matches))
	for _, match := range matches {
		if !hiddenWanted && strings.HasPrefix(filepath.Base(match), ".") {
			continue
		}
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", match, err)
		}
		absMatches = append(absMatches, absPath)
	}
	return absMatches, nil
}

func walk(dirPath string, opts DiscoverOptions, log *logging.Logger) ([]string, error) {
	files := make([]string, 0, 256)
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warnf("skipping %q: %v", path, err)
			return nil
		}
		if path == dirPath {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || opts.Excluded.Contains(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't scan directory %s: %w", dirPath, err)
	}
	return files, nil
}

// Classify sniffs the content of a file to tell images from videos
func Classify(path string) (entity.MediaType, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return entity.MediaUnknown, err
	}
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "image/"):
			return entity.MediaImage, nil
		case strings.HasPrefix(m.String(), "video/"):
			return entity.MediaVideo, nil
		}
	}
	return entity.MediaUnknown, nil
}

func (l *LocalSource) OriginalFilename(_ context.Context, ref entity.MediaRef) (string, bool) {
	if ref.Locator == "" {
		return "", false
	}
	name := filepath.Base(ref.Locator)
	if name == "." || name == string(filepath.Separator) {
		return "", false
	}
	return name, true
}

func (l *LocalSource) LoadBytes(ctx context.Context, ref entity.MediaRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(ref.Locator)
	if err != nil {
		return nil, err
	}
	l.log.Debugf("loaded %d bytes from %s", len(data), ref.Locator)
	return data, nil
}
