package browse

import (
	"sync"

	"github.com/m-manu/picstream/entity"
)

// Ticket identifies one listing request
type Ticket struct {
	path string
	seq  uint64
}

// DirectoryCache holds the listing on display. A listing result is applied only
// if its path is still the one being browsed when it arrives, and only if no
// newer listing for that path was applied before it.
type DirectoryCache struct {
	mx      sync.Mutex
	seq     uint64
	applied uint64
	path    string
	entries []entity.FileSystemEntry
	err     error
}

// NewDirectoryCache returns an empty cache
func NewDirectoryCache() *DirectoryCache {
	return &DirectoryCache{}
}

// Begin registers a listing request for path
func (c *DirectoryCache) Begin(path string) Ticket {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.seq++
	return Ticket{path: path, seq: c.seq}
}

// Commit applies the outcome of a listing request. currentPath is the path being
// browsed at the time of the call. A failed listing clears the entries.
// Returns false when the outcome was discarded as stale.
func (c *DirectoryCache) Commit(ticket Ticket, entries []entity.FileSystemEntry, err error, currentPath string) bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	if ticket.path != currentPath || ticket.seq < c.applied {
		return false
	}
	c.applied = ticket.seq
	c.path = ticket.path
	if err != nil {
		c.entries = nil
		c.err = err
		return true
	}
	c.entries = entries
	c.err = nil
	return true
}

// Clear drops the listing, e.g. after the connection was lost.
// Requests issued before the call can't be committed anymore.
func (c *DirectoryCache) Clear() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.seq++
	c.applied = c.seq
	c.path = ""
	c.entries = nil
	c.err = nil
}

// Snapshot returns the listing on display
func (c *DirectoryCache) Snapshot() (path string, entries []entity.FileSystemEntry, err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	entries = make([]entity.FileSystemEntry, len(c.entries))
	copy(entries, c.entries)
	return c.path, entries, c.err
}

// Lookup finds an entry of the listing on display by name
func (c *DirectoryCache) Lookup(name string) (entity.FileSystemEntry, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for _, e := range c.entries {
		if e.Name == name {
			return e, true
		}
	}
	return entity.FileSystemEntry{}, false
}
