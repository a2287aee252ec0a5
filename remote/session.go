// Package remote talks to file shares exposed by a remote server.
package remote

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/m-manu/picstream/logging"
)

var (
	// ErrNotConnected is returned when a share is used before it was attached
	ErrNotConnected = errors.New("share is not attached")
	// ErrWriteAborted is returned when a progress callback asks to stop a write
	ErrWriteAborted = errors.New("write aborted")
)

// ResourceType is the type a server reports for a directory entry.
// The zero value means the server didn't report one.
type ResourceType int8

const (
	ResourceUnknown ResourceType = iota
	ResourceDirectory
	ResourceRegular
	ResourceSymlink
	ResourceOther
)

// RawEntry is a directory entry as reported by the server
type RawEntry struct {
	Name    string
	Type    ResourceType
	Size    *int64
	ModTime *time.Time
}

// ProgressFunc receives the percentage written so far; returning false aborts the write
type ProgressFunc func(percent int) bool

// Session is a connection to one remote share. It may silently become invalid
// between calls, so callers obtain it through a SessionResolver for every
// logical operation and never keep it longer than that.
type Session interface {
	// ConnectShare (re)attaches the named share, establishing the connection if needed.
	ConnectShare(ctx context.Context, name string) error

	// ListDirectory returns the raw entries of a share-relative, slash separated path.
	ListDirectory(ctx context.Context, path string) ([]RawEntry, error)

	// WriteFile creates or truncates path and writes data to it.
	WriteFile(ctx context.Context, data []byte, path string, onProgress ProgressFunc) error

	// Close releases the connection.
	Close() error
}

// Credentials used to log in to the server
type Credentials struct {
	Username string
	Password string
	// KnownHostsFile is used to verify SFTP host keys; empty disables verification
	KnownHostsFile string
}

// Factory constructs a transport object for an endpoint. It must not perform network I/O.
type Factory func(endpoint Endpoint, creds Credentials, log *logging.Logger) (Session, error)

// NewSession is the default Factory: it picks the implementation by scheme.
func NewSession(endpoint Endpoint, creds Credentials, log *logging.Logger) (Session, error) {
	switch endpoint.Scheme {
	case SchemeSMB:
		return NewSMBSession(endpoint, creds, log), nil
	case SchemeSFTP:
		return NewSFTPSession(endpoint, creds, log), nil
	default:
		return nil, errors.New("unsupported scheme " + string(endpoint.Scheme))
	}
}

func rawEntryFromFileInfo(info fs.FileInfo) RawEntry {
	entry := RawEntry{Name: info.Name()}
	mode := info.Mode()
	switch {
	case mode.IsDir():
		entry.Type = ResourceDirectory
	case mode.IsRegular():
		entry.Type = ResourceRegular
	case mode&fs.ModeSymlink != 0:
		entry.Type = ResourceSymlink
	default:
		entry.Type = ResourceOther
	}
	if !mode.IsDir() {
		size := info.Size()
		entry.Size = &size
	}
	if modTime := info.ModTime(); !modTime.IsZero() {
		entry.ModTime = &modTime
	}
	return entry
}
