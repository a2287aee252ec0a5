package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSession struct {
	mx         sync.Mutex
	connects   []string
	connectErr error
	closed     bool
}

func (s *countingSession) ConnectShare(_ context.Context, name string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.connects = append(s.connects, name)
	return s.connectErr
}

func (s *countingSession) ListDirectory(context.Context, string) ([]RawEntry, error) {
	return nil, nil
}

func (s *countingSession) WriteFile(context.Context, []byte, string, ProgressFunc) error {
	return nil
}

func (s *countingSession) Close() error {
	s.closed = true
	return nil
}

type recordingFactory struct {
	created   []*countingSession
	endpoints []Endpoint
	err       error
}

func (f *recordingFactory) build(endpoint Endpoint, _ Credentials, _ *logging.Logger) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &countingSession{}
	f.created = append(f.created, s)
	f.endpoints = append(f.endpoints, endpoint)
	return s, nil
}

func TestResolveAttachesShareEveryTime(t *testing.T) {
	factory := &recordingFactory{}
	r := NewResolver(Config{Endpoint: "192.168.1.230", Share: "Photos"}, factory.build, logging.NewNopLogger())

	s1, err := r.Resolve(context.Background())
	require.NoError(t, err)
	s2, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	require.Len(t, factory.created, 1)
	assert.Equal(t, []string{"Photos", "Photos"}, factory.created[0].connects)
	assert.Equal(t, 445, factory.endpoints[0].Port)
}

func TestResolveConfigurationError(t *testing.T) {
	factory := &recordingFactory{}
	r := NewResolver(Config{Endpoint: "not a host", Share: "Photos"}, factory.build, logging.NewNopLogger())
	_, err := r.Resolve(context.Background())
	var cfgErr *entity.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "not a host", cfgErr.Endpoint)
	assert.Empty(t, factory.created)
}

func TestResolveConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	factory := &recordingFactory{}
	r := NewResolver(Config{Endpoint: "nas", Share: "Photos"}, func(ep Endpoint, c Credentials, l *logging.Logger) (Session, error) {
		s, _ := factory.build(ep, c, l)
		s.(*countingSession).connectErr = cause
		return s, nil
	}, logging.NewNopLogger())

	_, err := r.Resolve(context.Background())
	var connErr *entity.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "Photos", connErr.Share)
	assert.ErrorIs(t, err, cause)
	// not retried
	assert.Len(t, factory.created[0].connects, 1)
}

func TestResolveFactoryError(t *testing.T) {
	factory := &recordingFactory{err: errors.New("no such scheme")}
	r := NewResolver(Config{Endpoint: "nas", Share: "Photos"}, factory.build, logging.NewNopLogger())
	_, err := r.Resolve(context.Background())
	var connErr *entity.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestReconfigureRebuildsTransport(t *testing.T) {
	factory := &recordingFactory{}
	r := NewResolver(Config{Endpoint: "nas", Share: "Photos"}, factory.build, logging.NewNopLogger())
	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	r.Reconfigure(Config{Endpoint: "sftp://other:2222", Share: "Photos"})
	assert.True(t, factory.created[0].closed)

	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, factory.created, 2)
	assert.Equal(t, SchemeSFTP, factory.endpoints[1].Scheme)
	assert.Equal(t, 2222, factory.endpoints[1].Port)
}

func TestForkIsIndependent(t *testing.T) {
	factory := &recordingFactory{}
	r := NewResolver(Config{Endpoint: "nas", Share: "Photos"}, factory.build, logging.NewNopLogger())
	fork := r.Fork()

	s1, err := r.Resolve(context.Background())
	require.NoError(t, err)
	s2, err := fork.Resolve(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)

	require.NoError(t, fork.Close())
	assert.True(t, factory.created[1].closed)
	assert.False(t, factory.created[0].closed)
}
