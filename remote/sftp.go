package remote

import (
	"context"
	"fmt"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/m-manu/picstream/logging"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const sshHandshakeTimeout = 15 * time.Second

// SFTPSession implements Session over SFTP. The share is a directory on the
// server; absolute share names are used as-is, others are relative to the
// login directory.
type SFTPSession struct {
	endpoint Endpoint
	creds    Credentials
	log      *logging.Logger

	// inUse is held shared by operations and exclusively while the connection is replaced
	inUse sync.RWMutex

	mx        sync.Mutex
	sshClient *ssh.Client
	client    *sftp.Client
	base      string
}

// NewSFTPSession creates the transport object. No connection is made until ConnectShare.
func NewSFTPSession(endpoint Endpoint, creds Credentials, log *logging.Logger) *SFTPSession {
	if endpoint.User != "" {
		creds.Username = endpoint.User
	}
	return &SFTPSession{
		endpoint: endpoint,
		creds:    creds,
		log:      log.WithField("endpoint", endpoint.String()),
	}
}

func (s *SFTPSession) clientConfig() (*ssh.ClientConfig, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if s.creds.KnownHostsFile != "" {
		cb, err := knownhosts.New(s.creds.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("known hosts file: %w", err)
		}
		hostKeyCallback = cb
	}
	return &ssh.ClientConfig{
		User:            s.creds.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(s.creds.Password)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         sshHandshakeTimeout,
	}, nil
}

// ConnectShare checks that the share directory exists. A live connection is
// kept; a dead one is replaced once the operations still using it are done.
func (s *SFTPSession) ConnectShare(ctx context.Context, name string) error {
	if s.reattach(name) {
		return nil
	}
	s.inUse.Lock()
	defer s.inUse.Unlock()
	if s.reattachLocked(name) {
		return nil
	}
	s.teardownLocked()

	config, err := s.clientConfig()
	if err != nil {
		return err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.endpoint.Address())
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.endpoint.Address(), err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, s.endpoint.Address(), config)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("ssh login as %q: %w", s.creds.Username, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return fmt.Errorf("sftp subsystem: %w", err)
	}
	base, err := shareBase(client, name)
	if err != nil {
		_ = client.Close()
		_ = sshClient.Close()
		return err
	}

	s.mx.Lock()
	s.sshClient, s.client, s.base = sshClient, client, base
	s.mx.Unlock()
	s.log.Debugf("attached share %q at %s", name, base)
	return nil
}

// reattach points the live connection, if any, at share name
func (s *SFTPSession) reattach(name string) bool {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	return s.reattachLocked(name)
}

func (s *SFTPSession) reattachLocked(name string) bool {
	s.mx.Lock()
	client := s.client
	s.mx.Unlock()
	if client == nil {
		return false
	}
	base, err := shareBase(client, name)
	if err != nil {
		s.log.Debugf("reconnecting, share %q not reachable: %v", name, err)
		return false
	}
	s.mx.Lock()
	s.base = base
	s.mx.Unlock()
	return true
}

// shareBase resolves share name to a directory on the server. Absolute names
// are used as-is, others are relative to the login directory.
func shareBase(client *sftp.Client, name string) (string, error) {
	base := name
	if !strings.HasPrefix(base, "/") {
		wd, err := client.Getwd()
		if err != nil {
			return "", fmt.Errorf("login directory: %w", err)
		}
		base = path.Join(wd, name)
	}
	info, err := client.Stat(base)
	if err != nil {
		return "", fmt.Errorf("share %q: %w", name, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("share %q is not a directory", name)
	}
	return path.Clean(base), nil
}

func (s *SFTPSession) current() (*sftp.Client, string, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.client == nil {
		return nil, "", ErrNotConnected
	}
	return s.client, s.base, nil
}

func (s *SFTPSession) ListDirectory(ctx context.Context, p string) ([]RawEntry, error) {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	client, base, err := s.current()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := client.ReadDir(path.Join(base, p))
	if err != nil {
		return nil, err
	}
	entries := make([]RawEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, rawEntryFromFileInfo(info))
	}
	return entries, nil
}

func (s *SFTPSession) WriteFile(ctx context.Context, data []byte, p string, onProgress ProgressFunc) error {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	client, base, err := s.current()
	if err != nil {
		return err
	}
	full := path.Join(base, p)
	f, err := client.Create(full)
	if err != nil {
		return fmt.Errorf("create %q: %w", p, err)
	}
	if err := writeWithProgress(ctx, f, data, onProgress); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", p, err)
	}
	return f.Close()
}

// Close waits for running operations, then drops the connection
func (s *SFTPSession) Close() error {
	s.inUse.Lock()
	defer s.inUse.Unlock()
	s.teardownLocked()
	return nil
}

func (s *SFTPSession) teardownLocked() {
	s.mx.Lock()
	sshClient, client := s.sshClient, s.client
	s.sshClient, s.client, s.base = nil, nil, ""
	s.mx.Unlock()

	if client != nil {
		if err := client.Close(); err != nil {
			s.log.Debugf("sftp close: %v", err)
		}
	}
	if sshClient != nil {
		_ = sshClient.Close()
	}
}
