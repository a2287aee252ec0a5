package remote

import (
	"context"
	"sync"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/logging"
)

// SessionResolver hands out sessions that are attached to their share.
type SessionResolver interface {
	// Resolve returns a session whose share has just been attached.
	Resolve(ctx context.Context) (Session, error)
	// Fork returns an independent resolver with the same configuration.
	Fork() SessionResolver
	// Close releases the transport held by the resolver.
	Close() error
}

// Config is what a resolver needs to build and attach a session
type Config struct {
	Endpoint    string
	Share       string
	Credentials Credentials
}

// Resolver owns the reconnect-before-use policy: every Resolve re-attaches the
// share. Sessions keep a live connection across re-attaches, so resolving
// never breaks an operation that is still running.
type Resolver struct {
	factory Factory
	log     *logging.Logger

	mx      sync.Mutex
	config  Config
	session Session
}

// NewResolver creates a resolver; factory defaults to NewSession when nil.
func NewResolver(config Config, factory Factory, log *logging.Logger) *Resolver {
	if factory == nil {
		factory = NewSession
	}
	return &Resolver{
		factory: factory,
		log:     log,
		config:  config,
	}
}

// Reconfigure replaces endpoint and credentials. The current transport is
// discarded and rebuilt on the next Resolve.
func (r *Resolver) Reconfigure(config Config) {
	r.mx.Lock()
	old := r.session
	r.session = nil
	r.config = config
	r.mx.Unlock()
	if old != nil {
		_ = old.Close()
	}
}

// Config returns the current configuration
func (r *Resolver) Config() Config {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.config
}

// Resolve builds the transport if missing, then attaches the share.
// Errors are *entity.ConfigurationError or *entity.ConnectionError.
func (r *Resolver) Resolve(ctx context.Context) (Session, error) {
	r.mx.Lock()
	session, config := r.session, r.config
	if session == nil {
		endpoint, err := ParseEndpoint(config.Endpoint)
		if err != nil {
			r.mx.Unlock()
			return nil, &entity.ConfigurationError{Endpoint: config.Endpoint, Cause: err}
		}
		session, err = r.factory(endpoint, config.Credentials, r.log)
		if err != nil {
			r.mx.Unlock()
			return nil, &entity.ConnectionError{Share: config.Share, Cause: err}
		}
		r.session = session
		r.log.Debugf("created client for %s", endpoint)
	}
	r.mx.Unlock()

	r.log.Debugf("attaching share %q", config.Share)
	if err := session.ConnectShare(ctx, config.Share); err != nil {
		r.log.Warnf("couldn't attach share %q: %v", config.Share, err)
		return nil, &entity.ConnectionError{Share: config.Share, Cause: err}
	}
	return session, nil
}

func (r *Resolver) Fork() SessionResolver {
	return NewResolver(r.Config(), r.factory, r.log)
}

func (r *Resolver) Close() error {
	r.mx.Lock()
	session := r.session
	r.session = nil
	r.mx.Unlock()
	if session == nil {
		return nil
	}
	return session.Close()
}
