// Package git reads documents from git repositories.
//
// Repositories are shallow-cloned once per (host, org, repo, branch) into a
// shared clone root and pulled on later reads. Every clone, pull and file
// copy for one working tree happens under a KeyedLocker lock so concurrent
// reads of the same repository never observe a half-updated tree.
package git

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Config configures the git reader.
type Config struct {
	// CloneRoot holds one working tree per repository and branch.
	CloneRoot string
	// GitHubAPIURL overrides https://api.github.com/ for listings.
	GitHubAPIURL string
	// HTTPClient is used for GitHub API calls.
	HTTPClient *http.Client
}

// remote describes what to sync into a working tree.
type remote struct {
	URL    string
	Branch string
	Token  string
}

// repoSyncer brings dir up to date with a remote branch.
type repoSyncer interface {
	Sync(ctx context.Context, rem remote, dir string) error
}

// Reader serves git:// URIs.
type Reader struct {
	cfg       Config
	locker    driven.KeyedLocker
	syncer    repoSyncer
	github    *githubLister
	remoteURL func(loc domain.Location) string
}

// New creates a git reader. locker serialises access to each working tree.
func New(cfg Config, locker driven.KeyedLocker) *Reader {
	return newReader(cfg, locker, goGitSyncer{})
}

func newReader(cfg Config, locker driven.KeyedLocker, syncer repoSyncer) *Reader {
	return &Reader{
		cfg:       cfg,
		locker:    locker,
		syncer:    syncer,
		github:    newGitHubLister(cfg.GitHubAPIURL, cfg.HTTPClient),
		remoteURL: httpsRemote,
	}
}

// Kind returns the version control source kind.
func (r *Reader) Kind() domain.SourceKind {
	return domain.SourceVersionControl
}

// Supports accepts git:// URIs.
func (r *Reader) Supports(uri string) bool {
	return strings.HasPrefix(uri, "git://")
}

// ReadFile syncs the working tree and copies the file into the staging area.
func (r *Reader) ReadFile(
	ctx context.Context,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	rel := loc.RepoPath()
	if rel == "" {
		return domain.StagedFile{}, domain.ValidationError("git location %s names no file", loc.Raw)
	}

	var staged domain.StagedFile
	err := r.withWorkTree(ctx, loc, creds, func(dir string) error {
		src, err := resolveInTree(dir, rel)
		if err != nil {
			return err
		}
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				return domain.NotFoundError("file not found in repository: %s", loc.Raw)
			}
			return domain.SourceConnectionError("reading %s: %w", loc.Raw, err)
		}
		if info.IsDir() {
			return domain.ValidationError("not a file: %s", loc.Raw)
		}

		dest, err := area.Path(path.Base(rel))
		if err != nil {
			return domain.SourceConnectionError("staging git file: %w", err)
		}
		n, err := copyFile(src, dest)
		if err != nil {
			return domain.SourceConnectionError("staging git file: %w", err)
		}
		staged = domain.StagedFile{Path: dest, Name: path.Base(rel), Size: n}
		return nil
	})
	return staged, err
}

// ListFiles lists files directly under the location's path. GitHub
// repositories are listed through the contents API without cloning.
func (r *Reader) ListFiles(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error) {
	if r.github.serves(loc.Authority) {
		return r.github.list(ctx, loc, creds)
	}

	var entries []domain.DirectoryEntry
	err := r.withWorkTree(ctx, loc, creds, func(dir string) error {
		target, err := resolveInTree(dir, loc.RepoPath())
		if err != nil {
			return err
		}
		des, err := os.ReadDir(target)
		if err != nil {
			if os.IsNotExist(err) {
				return domain.NotFoundError("directory not found in repository: %s", loc.Raw)
			}
			return domain.ValidationError("not a directory: %s", loc.Raw)
		}
		for _, de := range des {
			if !de.Type().IsRegular() {
				continue
			}
			info, err := de.Info()
			if err != nil {
				continue
			}
			entries = append(entries, domain.DirectoryEntry{
				Name:     de.Name(),
				Path:     entryURI(loc, path.Join(loc.RepoPath(), de.Name())),
				Size:     info.Size(),
				Modified: info.ModTime().UTC(),
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

// withWorkTree runs fn on an up-to-date working tree while holding its lock.
func (r *Reader) withWorkTree(ctx context.Context, loc domain.Location, creds domain.Credentials, fn func(dir string) error) error {
	key := cloneKey(loc)
	unlock, err := r.locker.Lock(ctx, key)
	if err != nil {
		return domain.SourceConnectionError("locking working tree %s: %w", key, err)
	}
	defer unlock()

	if err := os.MkdirAll(r.cfg.CloneRoot, 0700); err != nil {
		return domain.SourceConnectionError("creating clone root: %w", err)
	}
	dir := filepath.Join(r.cfg.CloneRoot, key)

	rem := remote{URL: r.remoteURL(loc), Branch: loc.Ref}
	if creds.VCS != nil {
		rem.Token = creds.VCS.Token
	}
	if err := r.syncer.Sync(ctx, rem, dir); err != nil {
		return classify(err, loc)
	}
	return fn(dir)
}

func httpsRemote(loc domain.Location) string {
	return fmt.Sprintf("https://%s/%s/%s", loc.Authority, loc.Owner(), loc.Repository())
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// cloneKey names the working tree for a location: host_org_repo_branch.
func cloneKey(loc domain.Location) string {
	parts := []string{loc.Authority, loc.Owner(), loc.Repository(), loc.Ref}
	for i, p := range parts {
		parts[i] = unsafeKeyChars.ReplaceAllString(p, "_")
	}
	return strings.Join(parts, "_")
}

// resolveInTree joins rel onto dir and refuses paths that leave the tree
// or reach into .git.
func resolveInTree(dir, rel string) (string, error) {
	full := filepath.Join(dir, filepath.FromSlash(rel))
	inside, err := filepath.Rel(dir, full)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", domain.ValidationError("path %q escapes the repository", rel)
	}
	if inside == ".git" || strings.HasPrefix(inside, ".git"+string(filepath.Separator)) {
		return "", domain.ValidationError("path %q is inside the git directory", rel)
	}
	return full, nil
}

func entryURI(loc domain.Location, rel string) string {
	return fmt.Sprintf("git://%s/%s/%s/%s/%s", loc.Authority, loc.Owner(), loc.Repository(), loc.Ref, rel)
}

func copyFile(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
