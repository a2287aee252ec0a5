// Package ui renders browsing and upload state on a terminal.
package ui

import (
	"sync"
	"unicode/utf8"

	"github.com/m-manu/picstream/bytesutil"
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/fmte"
	"github.com/m-manu/picstream/service"
)

const timeLayout = "2006-01-02 15:04"

// Console prints listings and notifications with fmte
type Console struct {
	statuses bool

	mx       sync.Mutex
	listings bool
	progress service.ProgressObserver
}

// NewConsole creates a console; transient status messages are printed only if statuses is set
func NewConsole(statuses bool) *Console {
	return &Console{statuses: statuses, listings: true}
}

// SetListings turns printing of listings as they change on or off
func (c *Console) SetListings(listings bool) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.listings = listings
}

// SetProgress sets where batch progress goes; nil drops it
func (c *Console) SetProgress(progress service.ProgressObserver) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.progress = progress
}

func (c *Console) NavigationChanged(state entity.NavigationState) {
	fmte.PrintfV("Now browsing %s (depth %d)\n", state.CurrentPath, len(state.History))
}

func (c *Console) ListingChanged(path string, entries []entity.FileSystemEntry, err error) {
	c.mx.Lock()
	listings := c.listings
	c.mx.Unlock()
	if err != nil || !listings {
		return
	}
	PrintListing(path, entries)
}

func (c *Console) BatchProgress(result entity.BatchResult) {
	c.mx.Lock()
	progress := c.progress
	c.mx.Unlock()
	if progress != nil {
		progress.BatchProgress(result)
	}
}

func (c *Console) Notify(notification entity.Notification) {
	switch notification.Severity {
	case entity.SeverityError:
		fmte.PrintfErr("Error: %s\n", notification.Message)
	default:
		if c.statuses {
			fmte.Printf("%s\n", notification.Message)
		}
	}
}

// PrintListing prints one row per entry: kind, name, size and modification time
func PrintListing(path string, entries []entity.FileSystemEntry) {
	if len(entries) == 0 {
		fmte.Printf("%s is empty\n", path)
		return
	}
	nameWidth := 0
	for _, e := range entries {
		nameWidth = max(nameWidth, utf8.RuneCountInString(displayName(e)))
	}
	for _, e := range entries {
		kind := "-"
		if e.IsDirectory {
			kind = "d"
		}
		size := ""
		if e.Size != nil && !e.IsDirectory {
			size = bytesutil.FileSizeFormat(*e.Size)
		}
		modified := ""
		if e.ModifiedAt != nil {
			modified = e.ModifiedAt.Local().Format(timeLayout)
		}
		fmte.Printf("%s %-*s %10s  %s\n", kind, nameWidth, displayName(e), size, modified)
	}
}

func displayName(e entity.FileSystemEntry) string {
	if e.IsDirectory {
		return e.Name + "/"
	}
	return e.Name
}
