package github

import (
	"context"
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring coordinates for a stored GitHub token.
const (
	KeyringService = "idekotlin"
	KeyringUser    = "github-token"
)

// Token source values reported by ResolveToken.
const (
	SourceEnv     = "env"
	SourceKeyring = "keyring"
	SourceCLI     = "gh"
)

// ErrNoToken means no GitHub token could be found.
var ErrNoToken = errors.New("no GitHub token available")

// TokenResolver finds a token for the REST backend.
type TokenResolver struct {
	// GHBinary is consulted last via `gh auth token`. Defaults to "gh".
	GHBinary string
}

// Resolve returns the first token found in GITHUB_TOKEN, GH_TOKEN, the system
// keyring and `gh auth token`, along with where it came from.
func (t *TokenResolver) Resolve(ctx context.Context) (token, source string, err error) {
	for _, env := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := os.Getenv(env); v != "" {
			return v, SourceEnv, nil
		}
	}

	if v, err := keyring.Get(KeyringService, KeyringUser); err == nil && v != "" {
		return v, SourceKeyring, nil
	}

	bin := t.GHBinary
	if bin == "" {
		bin = "gh"
	}
	if v, err := ghToken(ctx, bin); err == nil && v != "" {
		return v, SourceCLI, nil
	}

	return "", "", ErrNoToken
}

// StoreToken saves token in the system keyring.
func StoreToken(token string) error {
	return keyring.Set(KeyringService, KeyringUser, token)
}

// ForgetToken removes a stored token. A missing entry is not an error.
func ForgetToken() error {
	err := keyring.Delete(KeyringService, KeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
