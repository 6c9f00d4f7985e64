// Package share lists directories on the library share the movies live on.
package share

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the SMB port used when the address carries none.
const DefaultPort = 445

var (
	ErrInvalidAddress = errors.New("invalid share address")
	ErrNotDirectory   = errors.New("not a directory")
)

// ConnectionError means the share could not be reached or mounted.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to share %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError means the share rejected the supplied credentials.
type AuthError struct {
	Address string
	User    string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticate %q on share %s: %v", e.User, e.Address, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Entry is one item of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Connector lists directories below the share root.
// Directory paths are slash-separated and relative to the root; "" is the root itself.
type Connector interface {
	ListEntries(ctx context.Context, dir string) ([]Entry, error)
	Close() error
}

// Config holds share connection settings.
type Config struct {
	// Address is either a local directory or an SMB location such as
	// smb://host/share/sub, //host/share or \\host\share.
	Address  string
	Username string
	Password string
	Domain   string
}

// Location is a parsed SMB address.
type Location struct {
	Host  string
	Port  int
	Share string
	Root  string
}

// HostPort returns the dialable host:port pair.
func (l Location) HostPort() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// UNC returns the share in \\host\share form.
func (l Location) UNC() string {
	return `\\` + l.Host + `\` + l.Share
}

// IsRemote reports whether address points at an SMB share.
func IsRemote(address string) bool {
	return strings.HasPrefix(address, "smb://") ||
		strings.HasPrefix(address, "//") ||
		strings.HasPrefix(address, `\\`)
}

// ParseLocation splits an SMB address into host, port, share and sub-path.
func ParseLocation(address string) (Location, error) {
	rest := strings.TrimSpace(address)
	switch {
	case strings.HasPrefix(rest, "smb://"):
		rest = strings.TrimPrefix(rest, "smb://")
	case strings.HasPrefix(rest, "//"), strings.HasPrefix(rest, `\\`):
		rest = rest[2:]
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	rest = strings.ReplaceAll(rest, `\`, "/")
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Location{}, fmt.Errorf("%w: %q needs host and share", ErrInvalidAddress, address)
	}

	loc := Location{Host: parts[0], Port: DefaultPort, Share: parts[1]}
	if host, port, err := net.SplitHostPort(parts[0]); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 {
			return Location{}, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, port)
		}
		loc.Host, loc.Port = host, p
	}
	if len(parts) == 3 {
		loc.Root = strings.Trim(parts[2], "/")
	}
	return loc, nil
}

// Dial opens the connector matching cfg.Address.
func Dial(ctx context.Context, cfg Config) (Connector, error) {
	if IsRemote(cfg.Address) {
		return DialSMB(ctx, cfg)
	}
	return NewLocal(cfg.Address)
}
