package lib

import (
	"os"
	"path/filepath"
	"strings"

	set "github.com/deckarep/golang-set/v2"
)

// IsReadableDirectory checks whether a readable directory exists at given path
func IsReadableDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetFileExt gets file extension in lower case
func GetFileExt(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(ext)
}

// IsReadableFile checks whether argument is a readable file
func IsReadableFile(path string) bool {
	fileInfo, statErr := os.Stat(path)
	if statErr != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}

// LineSeparatedStrToSet converts a line-separated string to a set, skipping blank lines.
// Also returns the first few entries, for display.
func LineSeparatedStrToSet(lineSeparatedString string) (s set.Set[string], firstFew []string) {
	s = set.NewThreadUnsafeSetWithSize[string](20)
	firstFew = []string{}
	for _, e := range strings.Split(lineSeparatedString, "\n") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if s.Add(e) && len(firstFew) < 3 {
			firstFew = append(firstFew, e)
		}
	}
	return
}
