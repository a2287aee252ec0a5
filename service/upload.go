package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	set "github.com/deckarep/golang-set/v2"
	"github.com/m-manu/picstream/action"
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/logging"
	"github.com/m-manu/picstream/media"
	"github.com/m-manu/picstream/remote"
	"golang.org/x/sync/errgroup"
)

const filenameResolutionParallelism = 8

// ProgressObserver receives a snapshot of the batch after every change
type ProgressObserver interface {
	BatchProgress(result entity.BatchResult)
}

// Relister refreshes the listing of a remote directory
type Relister interface {
	Relist(ctx context.Context, path string)
}

// Orchestrator runs upload batches, one at a time
type Orchestrator struct {
	source  media.Source
	workers int
	log     *logging.Logger

	observer ProgressObserver
	relister Relister
	running  atomic.Bool
}

// NewOrchestrator creates an orchestrator. With workers > 1 items are transferred
// in parallel, each worker over its own session.
func NewOrchestrator(source media.Source, workers int, log *logging.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		source:  source,
		workers: workers,
		log:     log,
	}
}

// SetObserver sets who gets notified of progress. Must be called before Upload.
func (o *Orchestrator) SetObserver(observer ProgressObserver) {
	o.observer = observer
}

// SetRelister sets who refreshes the target directory after a batch. Must be called before Upload.
func (o *Orchestrator) SetRelister(relister Relister) {
	o.relister = relister
}

// progressEvent is sent by transfers; index addresses the item in selection order
type progressEvent struct {
	index     int
	started   bool
	progress  float64
	completed bool
	err       error
}

// Upload transfers refs into targetPath. A failed item never stops the batch:
// its error is recorded on the item. The returned error is non-nil only when
// the batch couldn't run at all, or was cancelled.
func (o *Orchestrator) Upload(ctx context.Context, refs []entity.MediaRef, targetPath string,
	resolver remote.SessionResolver,
) (entity.BatchResult, error) {
	if len(refs) == 0 {
		return entity.BatchResult{}, entity.ErrNoMedia
	}
	if !o.running.CompareAndSwap(false, true) {
		return entity.BatchResult{}, entity.ErrBatchInProgress
	}
	defer o.running.Store(false)

	filenames, err := o.resolveFilenames(ctx, refs, targetPath)
	if err != nil {
		return entity.BatchResult{}, err
	}
	result := entity.BatchResult{Items: make([]entity.UploadItem, len(refs))}
	for i, ref := range refs {
		result.Items[i] = entity.UploadItem{SourceRef: ref, Filename: filenames[i]}
	}
	o.notify(result)

	session, err := resolver.Resolve(ctx)
	if err != nil {
		o.log.Errorf("upload of %d files to %s couldn't start: %v", len(refs), targetPath, err)
		return result, err
	}

	start := time.Now()
	events := make(chan progressEvent, 64)
	go func() {
		defer close(events)
		o.transfer(ctx, session, resolver, result.Items, targetPath, events)
	}()
	for event := range events {
		o.apply(&result, event)
		o.notify(result)
	}
	o.log.Infof("uploaded %d of %d files to %s in %.1fs", result.Succeeded, result.Attempted, targetPath,
		time.Since(start).Seconds())

	if o.relister != nil {
		o.relister.Relist(ctx, targetPath)
	}
	return result, ctx.Err()
}

// resolveFilenames resolves names concurrently, then renames in-batch collisions in selection order
func (o *Orchestrator) resolveFilenames(ctx context.Context, refs []entity.MediaRef, targetPath string) ([]string, error) {
	filenames := make([]string, len(refs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(filenameResolutionParallelism)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			filenames[i] = ResolveFilename(gCtx, o.source, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	taken := set.NewThreadUnsafeSetWithSize[string](len(refs))
	for i := range filenames {
		a := action.UploadFileAction{TargetDir: targetPath, Filename: filenames[i]}
		for taken.Contains(a.Uniqueness()) {
			a.Filename = withDisambiguator(filenames[i])
		}
		if a.Filename != filenames[i] {
			o.log.Debugf("%q is already used in this batch, uploading as %q", filenames[i], a.Filename)
			filenames[i] = a.Filename
		}
		taken.Add(a.Uniqueness())
	}
	return filenames, nil
}

// apply is the only place where items of a running batch change
func (o *Orchestrator) apply(result *entity.BatchResult, event progressEvent) {
	item := &result.Items[event.index]
	switch {
	case event.started:
		result.Attempted++
	case event.err != nil:
		item.Progress = 0
		item.Completed = false
		item.Err = event.err
	case event.completed:
		item.Progress = 1
		item.Completed = true
		result.Succeeded++
	default:
		item.Progress = event.progress
	}
	result.Progress = Aggregate(result.Items)
}

func (o *Orchestrator) notify(result entity.BatchResult) {
	if o.observer != nil {
		o.observer.BatchProgress(result.Clone())
	}
}

func (o *Orchestrator) transfer(ctx context.Context, session remote.Session, resolver remote.SessionResolver,
	items []entity.UploadItem, targetPath string, events chan<- progressEvent,
) {
	workers := min(o.workers, len(items))
	if workers == 1 {
		for i := range items {
			if ctx.Err() != nil {
				return
			}
			o.transferItem(ctx, session, i, items[i], targetPath, events)
		}
		return
	}

	// Items are read-only here: only apply writes to the batch.
	queue := make(chan int, len(items))
	for i := range items {
		queue <- i
	}
	close(queue)
	var wg sync.WaitGroup
	worker := func(session remote.Session) {
		defer wg.Done()
		for i := range queue {
			if ctx.Err() != nil {
				return
			}
			o.transferItem(ctx, session, i, items[i], targetPath, events)
		}
	}
	wg.Add(workers)
	go worker(session)
	for w := 1; w < workers; w++ {
		go func() {
			forked := resolver.Fork()
			defer func() {
				_ = forked.Close()
			}()
			s, err := forked.Resolve(ctx)
			if err != nil {
				o.log.Warnf("upload worker #%d couldn't connect, continuing with fewer workers: %v", w+1, err)
				wg.Done()
				return
			}
			worker(s)
		}()
	}
	wg.Wait()
}

func (o *Orchestrator) transferItem(ctx context.Context, session remote.Session, index int, item entity.UploadItem,
	targetPath string, events chan<- progressEvent,
) {
	events <- progressEvent{index: index, started: true}
	var a action.TransferAction = action.UploadFileAction{
		Index:     index,
		Source:    o.source,
		Ref:       item.SourceRef,
		TargetDir: targetPath,
		Filename:  item.Filename,
	}
	err := a.Perform(ctx, session, func(percent int) bool {
		events <- progressEvent{index: index, progress: NormalizePercent(percent)}
		return ctx.Err() == nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, remote.ErrWriteAborted) {
			o.log.Warnf("%v: cancelled", a)
		} else {
			o.log.Errorf("%v: failed due to: %v", a, err)
		}
		events <- progressEvent{index: index, err: err}
		return
	}
	o.log.Debugf("%v: done", a)
	events <- progressEvent{index: index, completed: true}
}
