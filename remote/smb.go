package remote

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/hirochachacha/go-smb2"
	"github.com/m-manu/picstream/logging"
)

// SMBSession implements Session over SMB2/3.
type SMBSession struct {
	endpoint Endpoint
	creds    Credentials
	log      *logging.Logger

	// inUse is held shared by operations and exclusively while the connection is replaced
	inUse sync.RWMutex

	mx        sync.Mutex
	conn      net.Conn
	session   *smb2.Session
	share     *smb2.Share
	shareName string
}

// NewSMBSession creates the transport object. No connection is made until ConnectShare.
func NewSMBSession(endpoint Endpoint, creds Credentials, log *logging.Logger) *SMBSession {
	if endpoint.User != "" {
		creds.Username = endpoint.User
	}
	return &SMBSession{
		endpoint: endpoint,
		creds:    creds,
		log:      log.WithField("endpoint", endpoint.String()),
	}
}

// ConnectShare makes sure share name is mounted. A live mount is kept; anything
// else is replaced by a fresh connection once the operations still using the
// old one are done.
func (s *SMBSession) ConnectShare(ctx context.Context, name string) error {
	if s.reattach(ctx, name) {
		return nil
	}
	s.inUse.Lock()
	defer s.inUse.Unlock()
	if s.reattachLocked(ctx, name) {
		return nil
	}
	s.teardownLocked()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.endpoint.Address())
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.endpoint.Address(), err)
	}
	dialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     s.creds.Username,
			Password: s.creds.Password,
		},
	}
	session, err := dialer.DialContext(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smb login as %q: %w", s.creds.Username, err)
	}
	share, err := session.WithContext(ctx).Mount(name)
	if err != nil {
		_ = session.Logoff()
		_ = conn.Close()
		return fmt.Errorf("mount %q: %w", name, err)
	}

	s.mx.Lock()
	s.conn, s.session, s.share, s.shareName = conn, session, share, name
	s.mx.Unlock()
	s.log.Debugf("mounted share %q", name)
	return nil
}

// reattach tells whether share name is mounted over a connection that still answers
func (s *SMBSession) reattach(ctx context.Context, name string) bool {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	return s.reattachLocked(ctx, name)
}

func (s *SMBSession) reattachLocked(ctx context.Context, name string) bool {
	s.mx.Lock()
	share, mounted := s.share, s.shareName
	s.mx.Unlock()
	if share == nil || !strings.EqualFold(mounted, name) {
		return false
	}
	if _, err := share.WithContext(ctx).Stat(""); err != nil {
		s.log.Debugf("reconnecting, share %q not reachable: %v", name, err)
		return false
	}
	return true
}

func (s *SMBSession) currentShare() (*smb2.Share, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.share == nil {
		return nil, ErrNotConnected
	}
	return s.share, nil
}

func (s *SMBSession) ListDirectory(ctx context.Context, path string) ([]RawEntry, error) {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	share, err := s.currentShare()
	if err != nil {
		return nil, err
	}
	infos, err := share.WithContext(ctx).ReadDir(smbPath(path))
	if err != nil {
		return nil, err
	}
	entries := make([]RawEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, rawEntryFromFileInfo(info))
	}
	return entries, nil
}

func (s *SMBSession) WriteFile(ctx context.Context, data []byte, path string, onProgress ProgressFunc) error {
	s.inUse.RLock()
	defer s.inUse.RUnlock()
	share, err := s.currentShare()
	if err != nil {
		return err
	}
	f, err := share.WithContext(ctx).Create(smbPath(path))
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := writeWithProgress(ctx, f, data, onProgress); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	return f.Close()
}

// Close waits for running operations, then drops the connection
func (s *SMBSession) Close() error {
	s.inUse.Lock()
	defer s.inUse.Unlock()
	s.teardownLocked()
	return nil
}

// teardownLocked detaches the current connection, if any. Errors are only logged:
// the connection is usually already dead when this runs.
func (s *SMBSession) teardownLocked() {
	s.mx.Lock()
	conn, session, share := s.conn, s.session, s.share
	s.conn, s.session, s.share, s.shareName = nil, nil, nil, ""
	s.mx.Unlock()

	if share != nil {
		if err := share.Umount(); err != nil {
			s.log.Debugf("umount: %v", err)
		}
	}
	if session != nil {
		if err := session.Logoff(); err != nil {
			s.log.Debugf("logoff: %v", err)
		}
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// smbPath converts a share path ("/a/b") to the form the server expects ("a\b")
func smbPath(p string) string {
	p = strings.Trim(p, "/")
	return strings.ReplaceAll(p, "/", `\`)
}
