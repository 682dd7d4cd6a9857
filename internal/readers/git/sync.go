package git

import (
	"context"
	"errors"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// tokenUser is sent as the basic auth username alongside an access token.
// GitHub and GitLab both ignore its value when the password is a token.
const tokenUser = "x-access-token"

// goGitSyncer keeps shallow single-branch clones current using go-git.
type goGitSyncer struct{}

// Sync clones rem into dir when dir holds no repository, otherwise pulls.
// A pull that cannot fast-forward discards the tree and clones again.
func (goGitSyncer) Sync(ctx context.Context, rem remote, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return clone(ctx, rem, dir)
	}
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    gogit.DefaultRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(rem.Branch),
		SingleBranch:  true,
		Depth:         1,
		Auth:          auth(rem.Token),
		Force:         true,
	})
	switch {
	case err == nil, errors.Is(err, gogit.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, gogit.ErrNonFastForwardUpdate):
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return rmErr
		}
		return clone(ctx, rem, dir)
	default:
		return err
	}
}

func clone(ctx context.Context, rem remote, dir string) error {
	_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:           rem.URL,
		Auth:          auth(rem.Token),
		ReferenceName: plumbing.NewBranchReferenceName(rem.Branch),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		// Leave nothing behind that PlainOpen would later mistake for a clone.
		_ = os.RemoveAll(dir)
	}
	return err
}

func auth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: tokenUser, Password: token}
}

func classify(err error, loc domain.Location) error {
	repo := loc.Owner() + "/" + loc.Repository()

	var noRef gogit.NoMatchingRefSpecError
	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return domain.NotFoundError("repository not found: %s", repo)
	case errors.Is(err, plumbing.ErrReferenceNotFound), errors.As(err, &noRef):
		return domain.NotFoundError("branch %s not found in %s", loc.Ref, repo)
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return domain.Errorf(domain.ErrUnauthorized, "access to %s denied: %w", repo, err)
	default:
		var derr *domain.Error
		if errors.As(err, &derr) {
			return err
		}
		return domain.SourceConnectionError("syncing %s: %w", repo, err)
	}
}
