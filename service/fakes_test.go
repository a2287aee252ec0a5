package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/remote"
)

// fakeSource knows items by locator; missing data means a load failure
type fakeSource struct {
	names map[string]string
	data  map[string][]byte
}

func (s *fakeSource) OriginalFilename(_ context.Context, ref entity.MediaRef) (string, bool) {
	name, ok := s.names[ref.Locator]
	return name, ok
}

func (s *fakeSource) LoadBytes(_ context.Context, ref entity.MediaRef) ([]byte, error) {
	data, ok := s.data[ref.Locator]
	if !ok {
		return nil, errors.New("asset unavailable")
	}
	return data, nil
}

type fakeSession struct {
	mx      sync.Mutex
	entries map[string][]remote.RawEntry
	listErr error
	files   map[string][]byte
	// progress reported by every write before it succeeds
	steps   []int
	block   chan struct{}
	writing chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		entries: map[string][]remote.RawEntry{},
		files:   map[string][]byte{},
		steps:   []int{50, 100},
	}
}

func (s *fakeSession) ConnectShare(context.Context, string) error {
	return nil
}

func (s *fakeSession) ListDirectory(_ context.Context, path string) ([]remote.RawEntry, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries[path], nil
}

func (s *fakeSession) WriteFile(ctx context.Context, data []byte, path string, onProgress remote.ProgressFunc) error {
	if s.writing != nil {
		s.writing <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, step := range s.steps {
		if !onProgress(step) {
			return remote.ErrWriteAborted
		}
	}
	s.mx.Lock()
	s.files[path] = data
	s.mx.Unlock()
	return nil
}

func (s *fakeSession) Close() error {
	return nil
}

func (s *fakeSession) written() map[string][]byte {
	s.mx.Lock()
	defer s.mx.Unlock()
	files := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		files[k] = v
	}
	return files
}

type fakeResolver struct {
	session remote.Session
	err     error
	forkErr error
	forks   *atomic.Int32
}

func newFakeResolver(session remote.Session) *fakeResolver {
	return &fakeResolver{session: session, forks: &atomic.Int32{}}
}

func (r *fakeResolver) Resolve(context.Context) (remote.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.session, nil
}

func (r *fakeResolver) Fork() remote.SessionResolver {
	r.forks.Add(1)
	return &fakeResolver{session: r.session, err: r.forkErr, forks: r.forks}
}

func (r *fakeResolver) Close() error {
	return nil
}

type recordingObserver struct {
	mx        sync.Mutex
	snapshots []entity.BatchResult
}

func (o *recordingObserver) BatchProgress(result entity.BatchResult) {
	o.mx.Lock()
	o.snapshots = append(o.snapshots, result)
	o.mx.Unlock()
}

type recordingRelister struct {
	paths []string
}

func (r *recordingRelister) Relist(_ context.Context, path string) {
	r.paths = append(r.paths, path)
}
