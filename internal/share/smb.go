package share

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"strings"
	"sync"

	"github.com/hirochachacha/go-smb2"
)

// SMB lists directories on a mounted SMB share.
type SMB struct {
	loc     Location
	conn    net.Conn
	session *smb2.Session
	share   *smb2.Share

	mu sync.Mutex
}

// DialSMB connects, authenticates and mounts the share named in cfg.Address.
func DialSMB(ctx context.Context, cfg Config) (*SMB, error) {
	loc, err := ParseLocation(cfg.Address)
	if err != nil {
		return nil, &ConnectionError{Address: cfg.Address, Err: err}
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", loc.HostPort())
	if err != nil {
		return nil, &ConnectionError{Address: cfg.Address, Err: err}
	}

	dialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     cfg.Username,
			Password: cfg.Password,
			Domain:   cfg.Domain,
		},
	}
	session, err := dialer.DialContext(ctx, conn)
	if err != nil {
		conn.Close()
		var respErr *smb2.ResponseError
		if errors.As(err, &respErr) {
			return nil, &AuthError{Address: cfg.Address, User: cfg.Username, Err: err}
		}
		return nil, &ConnectionError{Address: cfg.Address, Err: err}
	}

	mounted, err := session.Mount(loc.UNC())
	if err != nil {
		_ = session.Logoff()
		conn.Close()
		return nil, &ConnectionError{Address: cfg.Address, Err: fmt.Errorf("mount %s: %w", loc.UNC(), err)}
	}

	return &SMB{loc: loc, conn: conn, session: session, share: mounted}, nil
}

// ListEntries lists dir relative to the root given in the address.
// Calls are serialized since they share one SMB session.
func (s *SMB) ListEntries(ctx context.Context, dir string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := smbPath(s.loc.Root, dir)
	infos, err := s.share.WithContext(ctx).ReadDir(name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	return toEntries(infos), nil
}

func (s *SMB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := s.share.Umount(); err != nil {
		errs = append(errs, err)
	}
	if err := s.session.Logoff(); err != nil {
		errs = append(errs, err)
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// smbPath joins the share root with a relative directory using backslashes.
func smbPath(root, dir string) string {
	joined := strings.Trim(path.Join("/", root, dir), "/")
	return strings.ReplaceAll(joined, "/", `\`)
}
