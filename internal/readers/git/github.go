package git

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

const (
	// GitHubHost is the host whose repositories are listed through the API.
	GitHubHost = "github.com"

	// DefaultTimeout bounds a single GitHub API request.
	DefaultTimeout = 30 * time.Second

	// ProactiveRate throttles API calls below the authenticated limit of
	// 5000 requests per hour.
	ProactiveRate = 1.2

	// proactiveBurst lets a short run of listings through without waiting.
	proactiveBurst = 5
)

// githubLister lists repository directories with the contents API.
type githubLister struct {
	baseURL    *url.URL
	httpClient *http.Client
	bucket     *rate.Limiter
}

func newGitHubLister(apiURL string, httpClient *http.Client) *githubLister {
	l := &githubLister{
		httpClient: httpClient,
		bucket:     rate.NewLimiter(rate.Limit(ProactiveRate), proactiveBurst),
	}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		if u, err := url.Parse(apiURL); err == nil {
			l.baseURL = u
		}
	}
	return l
}

func (l *githubLister) serves(host string) bool {
	return strings.EqualFold(host, GitHubHost) || strings.EqualFold(host, "www."+GitHubHost)
}

// client builds a go-github client for one call, authenticated when a
// token is supplied.
func (l *githubLister) client(ctx context.Context, token string) *gh.Client {
	var hc *http.Client
	if token != "" {
		if l.httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, l.httpClient)
		}
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else if l.httpClient != nil {
		copied := *l.httpClient
		hc = &copied
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = DefaultTimeout

	c := gh.NewClient(hc)
	if l.baseURL != nil {
		c.BaseURL = l.baseURL
	}
	return c
}

func (l *githubLister) list(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error) {
	var token string
	if creds.VCS != nil {
		token = creds.VCS.Token
	}

	if err := l.bucket.Wait(ctx); err != nil {
		return nil, domain.SourceConnectionError("rate limit wait: %w", err)
	}

	file, dir, _, err := l.client(ctx, token).Repositories.GetContents(
		ctx, loc.Owner(), loc.Repository(), loc.RepoPath(),
		&gh.RepositoryContentGetOptions{Ref: loc.Ref},
	)
	if err != nil {
		return nil, wrapError(err, loc)
	}
	if file != nil {
		return nil, domain.ValidationError("not a directory: %s", loc.Raw)
	}

	entries := make([]domain.DirectoryEntry, 0, len(dir))
	for _, c := range dir {
		if c.GetType() != "file" {
			continue
		}
		rel := c.GetPath()
		if rel == "" {
			rel = path.Join(loc.RepoPath(), c.GetName())
		}
		entries = append(entries, domain.DirectoryEntry{
			Name: c.GetName(),
			Path: entryURI(loc, rel),
			Size: int64(c.GetSize()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// wrapError maps go-github errors onto the domain taxonomy.
func wrapError(err error, loc domain.Location) error {
	repo := loc.Owner() + "/" + loc.Repository()

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusNotFound:
			return domain.NotFoundError("not found in %s@%s: %s", repo, loc.Ref, loc.RepoPath())
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.Errorf(domain.ErrUnauthorized, "github denied access to %s: %s", repo, errResp.Message)
		}
		return domain.SourceConnectionError("github API error %d for %s: %s",
			errResp.Response.StatusCode, repo, errResp.Message)
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return domain.SourceConnectionError("github rate limit exceeded, resets at %s", rateErr.Rate.Reset.Format(time.RFC3339))
	}

	return domain.SourceConnectionError("list %s: %w", repo, err)
}
