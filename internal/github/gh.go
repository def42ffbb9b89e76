package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// AuthCheckTimeout bounds `gh auth status`.
const AuthCheckTimeout = 10 * time.Second

var (
	// ErrGHNotFound means the gh CLI is not on PATH.
	ErrGHNotFound = errors.New("gh CLI not found")
	// ErrGHNotAuthenticated means `gh auth status` failed.
	ErrGHNotAuthenticated = errors.New("gh CLI is not authenticated")
)

// GHCLI calls the hosting API through `gh api`, reusing the user's gh login.
type GHCLI struct {
	// Binary is the gh executable. Defaults to "gh".
	Binary string
}

func (g *GHCLI) binary() string {
	if g.Binary == "" {
		return "gh"
	}
	return g.Binary
}

// Name implements API.
func (g *GHCLI) Name() string { return "gh" }

// Get runs `gh api <endpoint>` and returns its stdout.
func (g *GHCLI) Get(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary(), "api", endpoint)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if strings.Contains(msg, "HTTP 404") {
				return nil, fmt.Errorf("gh api %s: %s: %w", endpoint, msg, ErrNotFound)
			}
			return nil, fmt.Errorf("gh api %s: %s: %w", endpoint, msg, err)
		}
		return nil, fmt.Errorf("gh api %s: %w", endpoint, err)
	}
	return stdout.Bytes(), nil
}

// CheckAuth runs `gh auth status`.
func (g *GHCLI) CheckAuth(ctx context.Context) error {
	path, err := exec.LookPath(g.binary())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGHNotFound, err)
	}

	ctx, cancel := context.WithTimeout(ctx, AuthCheckTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "auth", "status").CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrGHNotAuthenticated, strings.TrimSpace(string(out)))
	}
	return nil
}

// ghToken returns the token of the active gh login.
func ghToken(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, AuthCheckTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("gh auth token: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
