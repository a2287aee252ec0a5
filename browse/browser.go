// Package browse drives browsing of a remote share and uploads into the browsed directory.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/logging"
	"github.com/m-manu/picstream/remote"
	"github.com/m-manu/picstream/service"
)

// Observer is the presentation boundary: it's told about every state change.
// NavigationChanged and ListingChanged are never called concurrently, and a
// listing always belongs to the last navigation state reported before it.
// They must not call back into the Browser.
type Observer interface {
	NavigationChanged(state entity.NavigationState)
	// ListingChanged gets either the entries of path or the error that prevented listing it
	ListingChanged(path string, entries []entity.FileSystemEntry, err error)
	BatchProgress(result entity.BatchResult)
	Notify(notification entity.Notification)
}

// Browser owns the browse and upload flows for one share. It is safe for
// concurrent use; no lock is held while waiting for the network.
type Browser struct {
	resolver     *remote.Resolver
	orchestrator *service.Orchestrator
	observer     Observer
	log          *logging.Logger

	// viewMx orders navigation changes and listing commits, with their observer calls
	viewMx    sync.Mutex
	mx        sync.Mutex
	nav       *NavigationStack
	connected bool
	cache     *DirectoryCache
}

// NewBrowser creates a browser. It becomes the observer and the relister of orchestrator.
func NewBrowser(resolver *remote.Resolver, orchestrator *service.Orchestrator, observer Observer,
	log *logging.Logger,
) *Browser {
	b := &Browser{
		resolver:     resolver,
		orchestrator: orchestrator,
		observer:     observer,
		log:          log,
		nav:          NewNavigationStack(),
		cache:        NewDirectoryCache(),
	}
	orchestrator.SetObserver(b)
	orchestrator.SetRelister(b)
	return b
}

// Connect (re)connects with config and lists the share root. Navigation is
// reset only when both steps succeed.
func (b *Browser) Connect(ctx context.Context, config remote.Config) error {
	b.observer.Notify(entity.Status("Connecting to server..."))
	b.resolver.Reconfigure(config)
	ticket := b.cache.Begin(entity.RootPath)

	entries, err := b.list(ctx, entity.RootPath)
	b.viewMx.Lock()
	if err != nil {
		b.setConnected(false)
		b.cache.Clear()
		b.observer.ListingChanged(entity.RootPath, nil, err)
		b.viewMx.Unlock()
		b.alert(err)
		return err
	}
	b.mx.Lock()
	b.nav.Reset()
	b.connected = true
	state := b.nav.State()
	b.mx.Unlock()
	b.cache.Commit(ticket, entries, nil, entity.RootPath)
	b.observer.NavigationChanged(state)
	b.observer.ListingChanged(entity.RootPath, entries, nil)
	b.viewMx.Unlock()

	b.log.Infof("connected to share %q on %s", config.Share, config.Endpoint)
	b.observer.Notify(entity.Status(fmt.Sprintf("Loaded %d items.", len(entries))))
	return nil
}

// Descend opens a directory of the current listing
func (b *Browser) Descend(ctx context.Context, entry entity.FileSystemEntry) error {
	state, err := b.move(func(n *NavigationStack) (bool, error) {
		err := n.Descend(entry)
		return err == nil, err
	})
	if err != nil {
		return fmt.Errorf("can't open %q: %w", entry.Name, err)
	}
	return b.load(ctx, state.CurrentPath)
}

// DescendByName opens the directory called name in the current listing
func (b *Browser) DescendByName(ctx context.Context, name string) error {
	entry, ok := b.cache.Lookup(name)
	if !ok {
		return fmt.Errorf("no such directory: %q", name)
	}
	return b.Descend(ctx, entry)
}

// Ascend goes to the parent directory; a no-op at the root
func (b *Browser) Ascend(ctx context.Context) error {
	moved := false
	state, _ := b.move(func(n *NavigationStack) (bool, error) {
		moved = n.Ascend()
		return moved, nil
	})
	if !moved {
		return nil
	}
	return b.load(ctx, state.CurrentPath)
}

// move applies a navigation change and reports it when change says it moved
func (b *Browser) move(change func(n *NavigationStack) (bool, error)) (entity.NavigationState, error) {
	b.viewMx.Lock()
	defer b.viewMx.Unlock()
	b.mx.Lock()
	moved, err := change(b.nav)
	state := b.nav.State()
	b.mx.Unlock()
	if moved {
		b.observer.NavigationChanged(state)
	}
	return state, err
}

// Refresh lists the current directory again
func (b *Browser) Refresh(ctx context.Context) error {
	return b.load(ctx, b.CurrentPath())
}

// Relist refreshes path if it's still the one being browsed
func (b *Browser) Relist(ctx context.Context, path string) {
	if path != b.CurrentPath() {
		b.log.Debugf("not refreshing %s, no longer browsed", path)
		return
	}
	_ = b.load(ctx, path)
}

// Upload sends refs to targetPath, or to the current directory when targetPath is empty
func (b *Browser) Upload(ctx context.Context, refs []entity.MediaRef, targetPath string) (entity.BatchResult, error) {
	if targetPath == "" {
		targetPath = b.CurrentPath()
	}
	b.observer.Notify(entity.Status("Preparing upload..."))
	result, err := b.orchestrator.Upload(ctx, refs, targetPath, b.resolver)
	if err != nil {
		err = b.classify(err, targetPath)
		b.alert(err)
		return result, err
	}
	b.observer.Notify(entity.Status(fmt.Sprintf("Uploaded %d of %d files.", result.Succeeded, result.Attempted)))
	return result, nil
}

// BatchProgress forwards batch updates to the observer
func (b *Browser) BatchProgress(result entity.BatchResult) {
	b.observer.BatchProgress(result)
}

// CurrentPath is the path being browsed
func (b *Browser) CurrentPath() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.nav.state.CurrentPath
}

// State returns the navigation state
func (b *Browser) State() entity.NavigationState {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.nav.State()
}

// Connected tells whether the last connect or listing reached the share
func (b *Browser) Connected() bool {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.connected
}

// Listing returns the entries on display, or the error that replaced them
func (b *Browser) Listing() ([]entity.FileSystemEntry, error) {
	_, entries, err := b.cache.Snapshot()
	return entries, err
}

// Title names the current directory: its last segment, or the share name at the root
func (b *Browser) Title() string {
	if name := remote.BaseName(b.CurrentPath()); name != "" {
		return name
	}
	return b.resolver.Config().Share
}

func (b *Browser) load(ctx context.Context, path string) error {
	ticket := b.cache.Begin(path)
	b.observer.Notify(entity.Status(fmt.Sprintf("Loading %s...", path)))
	entries, err := b.list(ctx, path)
	b.viewMx.Lock()
	applied := b.cache.Commit(ticket, entries, err, b.CurrentPath())
	if applied {
		b.observer.ListingChanged(path, entries, err)
	}
	b.viewMx.Unlock()
	if !applied {
		b.log.Debugf("discarding listing of %s, no longer browsed", path)
		return nil
	}
	if err != nil {
		b.alert(err)
		return err
	}
	b.observer.Notify(entity.Status(fmt.Sprintf("Loaded %d items.", len(entries))))
	return nil
}

// list resolves a fresh session and lists path. Errors are classified.
func (b *Browser) list(ctx context.Context, path string) ([]entity.FileSystemEntry, error) {
	session, err := b.resolver.Resolve(ctx)
	if err != nil {
		return nil, b.classify(err, path)
	}
	entries, err := service.ListDirectory(ctx, session, path)
	if err != nil {
		return nil, b.classify(err, path)
	}
	b.setConnected(true)
	return entries, nil
}

func (b *Browser) setConnected(connected bool) {
	b.mx.Lock()
	b.connected = connected
	b.mx.Unlock()
}

// classify makes sure err is one of the kinds the presentation knows about.
// A connection failure also marks the browser disconnected.
func (b *Browser) classify(err error, path string) error {
	var (
		configErr  *entity.ConfigurationError
		connErr    *entity.ConnectionError
		listingErr *entity.ListingError
		itemErr    *entity.ItemTransferError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &connErr):
		b.setConnected(false)
		return err
	case errors.As(err, &listingErr), errors.As(err, &itemErr),
		errors.Is(err, entity.ErrNoMedia), errors.Is(err, entity.ErrBatchInProgress),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &entity.ListingError{Path: path, Cause: err}
	}
}

func (b *Browser) alert(err error) {
	var message string
	var (
		configErr  *entity.ConfigurationError
		connErr    *entity.ConnectionError
		listingErr *entity.ListingError
	)
	switch {
	case errors.Is(err, context.Canceled):
		b.observer.Notify(entity.Status("Cancelled."))
		return
	case errors.As(err, &configErr):
		message = fmt.Sprintf("Invalid server address: %v", configErr.Cause)
	case errors.As(err, &connErr):
		message = fmt.Sprintf("Connection failed: %v", connErr.Cause)
	case errors.As(err, &listingErr):
		message = fmt.Sprintf("Couldn't load %s: %v", listingErr.Path, listingErr.Cause)
	default:
		message = fmt.Sprintf("Upload failed: %v", err)
	}
	b.log.Errorf("%v", err)
	b.observer.Notify(entity.Alert(message))
}
