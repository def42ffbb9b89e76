package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RemoteTags lists tags with a git ls-remote instead of the hosting API.
// It needs no token and is not rate limited, but transfers the full ref
// advertisement on every call.
type RemoteTags struct {
	// URL is the clone URL, e.g. https://github.com/JetBrains/intellij-community.git.
	URL string
}

// CloneURL returns the https clone URL for an owner/name repository.
func CloneURL(fullName string) string {
	return "https://github.com/" + fullName + ".git"
}

// MatchingTags implements TagLister.
func (r *RemoteTags) MatchingTags(ctx context.Context, prefix string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{r.URL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{
		PeelingOption: git.IgnorePeeled,
	})
	if err != nil {
		return nil, fmt.Errorf("listing refs of %s: %w", r.URL, err)
	}
	return filterTags(refs, prefix), nil
}

func filterTags(refs []*plumbing.Reference, prefix string) []string {
	var tags []string
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		tag := strings.TrimPrefix(ref.Name().String(), "refs/tags/")
		if strings.HasPrefix(tag, prefix) {
			tags = append(tags, tag)
		}
	}
	return tags
}
