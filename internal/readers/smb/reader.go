// Package smb reads documents from SMB2/3 network shares.
package smb

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/hirochachacha/go-smb2"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// DefaultPort is the SMB port used when the location names none.
const DefaultPort = 445

// NT status codes surfaced by servers in smb2.ResponseError.
const (
	statusAccessDenied       uint32 = 0xC0000022
	statusObjectNameNotFound uint32 = 0xC0000034
	statusObjectPathNotFound uint32 = 0xC000003A
	statusLogonFailure       uint32 = 0xC000006D
	statusBadNetworkName     uint32 = 0xC00000CC
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// DialFunc opens the TCP connection to a server.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config configures the SMB reader.
type Config struct {
	Port int
	// Dial replaces net.Dialer.DialContext.
	Dial DialFunc
}

// Reader serves smb:// URIs and UNC paths.
type Reader struct {
	cfg Config
}

// New creates an SMB reader.
func New(cfg Config) *Reader {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Dial == nil {
		cfg.Dial = (&net.Dialer{}).DialContext
	}
	return &Reader{cfg: cfg}
}

// Kind returns the network share source kind.
func (r *Reader) Kind() domain.SourceKind {
	return domain.SourceNetworkShare
}

// Supports accepts smb:// URIs and \\server\share paths.
func (r *Reader) Supports(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "smb://") || strings.HasPrefix(uri, `\\`)
}

// ReadFile reads the whole file from the share and stages it.
func (r *Reader) ReadFile(
	ctx context.Context,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	rel := loc.SharePath()
	if rel == "" {
		return domain.StagedFile{}, domain.ValidationError("smb location %s names no file", loc.Raw)
	}

	var data []byte
	err := r.withShare(ctx, loc, creds, func(share *smb2.Share) error {
		info, err := share.Stat(sharePath(rel))
		if err != nil {
			return classify(err, loc)
		}
		if info.IsDir() {
			return domain.ValidationError("not a file: %s", loc.Raw)
		}
		// The whole file is buffered, so refuse oversized ones before reading.
		if err := checkSize(info.Size(), area.MaxBytes()); err != nil {
			return err
		}
		data, err = share.ReadFile(sharePath(rel))
		if err != nil {
			return classify(err, loc)
		}
		return nil
	})
	if err != nil {
		return domain.StagedFile{}, err
	}

	name := path.Base(rel)
	dest, err := area.Path(name)
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging smb file: %w", err)
	}
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging smb file: %w", err)
	}
	return domain.StagedFile{Path: dest, Name: name, Size: int64(len(data))}, nil
}

// ListFiles lists the files directly inside the directory.
func (r *Reader) ListFiles(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error) {
	var entries []domain.DirectoryEntry
	err := r.withShare(ctx, loc, creds, func(share *smb2.Share) error {
		infos, err := share.ReadDir(sharePath(loc.SharePath()))
		if err != nil {
			return classify(err, loc)
		}
		for _, fi := range infos {
			if fi.IsDir() {
				continue
			}
			entries = append(entries, domain.DirectoryEntry{
				Name:     fi.Name(),
				Path:     entryURI(loc, fi.Name()),
				Size:     fi.Size(),
				Modified: fi.ModTime().UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// withShare dials the server, starts an NTLM session, mounts the share and
// runs fn. Everything is torn down in reverse order before it returns.
func (r *Reader) withShare(ctx context.Context, loc domain.Location, creds domain.Credentials, fn func(*smb2.Share) error) error {
	addr := r.address(loc.Authority)
	conn, err := r.cfg.Dial(ctx, "tcp", addr)
	if err != nil {
		return domain.SourceConnectionError("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	initiator := &smb2.NTLMInitiator{}
	if c := creds.Share; c != nil {
		initiator.User = c.Username
		initiator.Password = c.Password
		initiator.Domain = c.Domain
	}
	dialer := &smb2.Dialer{Initiator: initiator}

	session, err := dialer.DialContext(ctx, conn)
	if err != nil {
		return classify(err, loc)
	}
	defer func() { _ = session.Logoff() }()

	share, err := session.Mount(loc.Share())
	if err != nil {
		return classify(err, loc)
	}
	defer func() { _ = share.Umount() }()

	return fn(share.WithContext(ctx))
}

func checkSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return domain.DocumentTooLargeError(size, limit)
	}
	return nil
}

func (r *Reader) address(authority string) string {
	if _, _, err := net.SplitHostPort(authority); err == nil {
		return authority
	}
	return net.JoinHostPort(authority, strconv.Itoa(r.cfg.Port))
}

// sharePath converts a slash separated path into the backslash form the
// protocol uses. The share root is "".
func sharePath(rel string) string {
	return strings.ReplaceAll(strings.Trim(rel, "/"), "/", `\`)
}

func entryURI(loc domain.Location, name string) string {
	parts := append([]string{loc.Authority}, loc.Segments...)
	return "smb://" + path.Join(append(parts, name)...)
}

func classify(err error, loc domain.Location) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}

	var resp *smb2.ResponseError
	if errors.As(err, &resp) {
		switch resp.Code {
		case statusObjectNameNotFound, statusObjectPathNotFound:
			return domain.NotFoundError("not found: %s", loc.Raw)
		case statusBadNetworkName:
			return domain.NotFoundError("share %s not found on %s", loc.Share(), loc.Authority)
		case statusAccessDenied, statusLogonFailure:
			return domain.Errorf(domain.ErrUnauthorized, "access denied to %s: %w", loc.Raw, err)
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NotFoundError("not found: %s", loc.Raw)
	}
	if errors.Is(err, fs.ErrPermission) {
		return domain.Errorf(domain.ErrUnauthorized, "access denied to %s: %w", loc.Raw, err)
	}
	return domain.SourceConnectionError("smb request for %s failed: %w", loc.Raw, err)
}
