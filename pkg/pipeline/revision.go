package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
)

// Revision identifies the commit a game root or mod directory was checked
// out at when a graph was built.
type Revision struct {
	Commit      string    `json:"commit" yaml:"commit"`
	Branch      string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	Subject     string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	CommittedAt time.Time `json:"committed_at" yaml:"committed_at"`
}

// Short returns the abbreviated commit hash.
func (r *Revision) Short() string {
	if r == nil {
		return ""
	}
	if len(r.Commit) > 8 {
		return r.Commit[:8]
	}
	return r.Commit
}

// SourceRevision reads HEAD of the git repository containing root. It
// returns nil and no error when root is not inside a repository or the
// repository has no commits yet.
func SourceRevision(root string) (*Revision, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", root, err)
	}

	head, err := repo.Head()
	if err != nil {
		// Unborn branch
		return nil, nil
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", head.Hash(), err)
	}

	rev := &Revision{
		Commit:      commit.Hash.String(),
		Author:      commit.Author.Name,
		Subject:     strings.TrimSpace(strings.SplitN(commit.Message, "\n", 2)[0]),
		CommittedAt: commit.Committer.When.UTC(),
	}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}
