// Package web reads documents over HTTP and HTTPS.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

const (
	// DefaultTimeout bounds a whole request including the body.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "policy-reader"

	// FallbackName is used when neither the response nor the URL names the file.
	FallbackName = "downloaded_file"

	// maxIndexBytes caps how much of a directory index page is parsed.
	maxIndexBytes = 4 << 20

	// maxRedirects matches the net/http default.
	maxRedirects = 10
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Config configures the HTTP reader.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// Transport replaces http.DefaultTransport.
	Transport http.RoundTripper
}

// Reader serves http:// and https:// URIs.
type Reader struct {
	cfg Config
}

// New creates an HTTP reader.
func New(cfg Config) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &Reader{cfg: cfg}
}

// Kind returns the HTTP source kind.
func (r *Reader) Kind() domain.SourceKind {
	return domain.SourceHTTP
}

// Supports accepts http:// and https:// URIs.
func (r *Reader) Supports(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ReadFile downloads the body into the staging area.
func (r *Reader) ReadFile(
	ctx context.Context,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	resp, err := r.get(ctx, loc.Raw, creds)
	if err != nil {
		return domain.StagedFile{}, err
	}
	defer resp.Body.Close()

	name := fileName(resp, loc)
	dest, err := area.Path(name)
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging download: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("staging download: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return domain.StagedFile{}, domain.SourceConnectionError("downloading %s: %w", loc.Raw, err)
	}
	return domain.StagedFile{Path: dest, Name: filepath.Base(dest), Size: n}, nil
}

// ListFiles parses an HTML directory index and returns the files it links
// to under the same directory.
func (r *Reader) ListFiles(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error) {
	resp, err := r.get(ctx, loc.Raw, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return nil, domain.UnsupportedFormatError(
			"listing is not supported for %s: response is %q, not an HTML index", loc.Raw, mediaType)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, domain.SourceConnectionError("reading index %s: %w", loc.Raw, err)
	}

	base := resp.Request.URL
	dir := base.Path
	if !strings.HasSuffix(dir, "/") {
		dir = dirOf(dir)
	}

	seen := map[string]bool{}
	var entries []domain.DirectoryEntry
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target, ok := indexLink(base, dir, href)
		if !ok || seen[target.String()] {
			return
		}
		seen[target.String()] = true

		entries = append(entries, domain.DirectoryEntry{
			Name: path.Base(target.Path),
			Path: target.String(),
		})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// indexLink resolves href and reports whether it names a file directly
// inside dir on the same host.
func indexLink(base *url.URL, dir, href string) (*url.URL, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	target := base.ResolveReference(ref)
	target.Fragment = ""
	target.RawQuery = ""

	if target.Host != base.Host || target.Scheme != base.Scheme {
		return nil, false
	}
	if strings.HasSuffix(target.Path, "/") || dirOf(target.Path) != dir {
		return nil, false
	}
	return target, true
}

// dirOf returns the directory of p with a trailing slash.
func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return "/"
	}
	return d + "/"
}

func (r *Reader) get(ctx context.Context, rawURL string, creds domain.Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.ValidationError("invalid url %q: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	if token := creds.HTTP.Token(); token != "" {
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return nil, domain.SourceConnectionError("request to %s failed: %w", rawURL, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, domain.NotFoundError("document not found: %s", rawURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, domain.SourceConnectionError("request to %s returned %s", rawURL, resp.Status).
			WithDetail("status", resp.StatusCode)
	}
	return resp, nil
}

// client returns an HTTP client that follows redirects. The bearer token
// is set on the first request only and never follows a redirect off its
// origin.
func (r *Reader) client() *http.Client {
	return &http.Client{
		Transport:     r.cfg.Transport,
		Timeout:       r.cfg.Timeout,
		CheckRedirect: stripCrossOriginAuth,
	}
}

// stripCrossOriginAuth drops Authorization when a redirect leaves the
// scheme and host:port of the original request. net/http ignores the port
// when it decides which headers to forward.
func stripCrossOriginAuth(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	origin := via[0].URL
	if !strings.EqualFold(req.URL.Scheme, origin.Scheme) || !strings.EqualFold(req.URL.Host, origin.Host) {
		req.Header.Del("Authorization")
	}
	return nil
}

// fileName prefers the Content-Disposition filename, then the last path
// segment of the final URL.
func fileName(resp *http.Response, loc domain.Location) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	if resp.Request != nil && resp.Request.URL != nil {
		if base := path.Base(resp.Request.URL.Path); base != "/" && base != "." && base != "" {
			return base
		}
	}
	if name := loc.Base(); name != "" {
		return name
	}
	return FallbackName
}
