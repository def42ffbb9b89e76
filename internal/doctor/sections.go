package doctor

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/majorcontext/idekotlin/internal/config"
	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/ui"
)

// VersionSection reports the binary's build information.
type VersionSection struct {
	Version string
	Commit  string
}

func (s *VersionSection) Name() string { return "Version" }

func (s *VersionSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "idekotlin:\t%s (%s)\n", s.Version, s.Commit)
	fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	return tw.Flush()
}

// ConfigSection reports the effective configuration.
type ConfigSection struct {
	Path   string
	Config *config.Config
	// Err is the error Load returned, if any.
	Err error
}

func (s *ConfigSection) Name() string { return "Configuration" }

func (s *ConfigSection) Print(w io.Writer) error {
	if s.Err != nil {
		return s.Err
	}
	cfg := s.Config
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", ui.ShortPath(s.Path))
	fmt.Fprintf(tw, "Repository:\t%s\n", cfg.GitHub.Repo)
	fmt.Fprintf(tw, "Backend:\t%s\n", cfg.GitHub.Backend)
	fmt.Fprintf(tw, "Tag source:\t%s\n", cfg.GitHub.TagSource)
	fmt.Fprintf(tw, "IntelliJ feed:\t%s\n", cfg.Feeds.IntelliJURL)
	fmt.Fprintf(tw, "Android Studio feed:\t%s\n", cfg.Feeds.AndroidStudioURL)
	fmt.Fprintf(tw, "Debug retention:\t%d days\n", cfg.Debug.RetentionDays)
	return tw.Flush()
}

// PinSection reports which minimum Kotlin version a run would use.
type PinSection struct {
	Dir string
}

func (s *PinSection) Name() string { return "Kotlin Version Pin" }

func (s *PinSection) Print(w io.Writer) error {
	version, source := config.DetectMinKotlin(s.Dir)
	if source == "" {
		fmt.Fprintf(w, "%s no %s found, using default %s\n", ui.WarnTag(), config.CatalogPath, version)
		return nil
	}
	fmt.Fprintf(w, "%s %s (from %s)\n", ui.OKTag(), version, ui.ShortPath(source))
	return nil
}

// GitHubSection checks that the configured backend can reach the API.
type GitHubSection struct {
	API github.API
	// Tokens is consulted for the REST backend. nil skips the token report.
	Tokens *github.TokenResolver
}

func (s *GitHubSection) Name() string { return "GitHub Access" }

func (s *GitHubSection) Print(w io.Writer) error {
	ctx := context.Background()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Backend:\t%s\n", s.API.Name())

	if s.Tokens != nil {
		if token, source, err := s.Tokens.Resolve(ctx); err == nil {
			fmt.Fprintf(tw, "Token:\t%s %s (from %s)\n", ui.OKTag(), redact(token), source)
		} else {
			fmt.Fprintf(tw, "Token:\t%s %v\n", ui.FailTag(), err)
		}
	}

	if err := s.API.CheckAuth(ctx); err != nil {
		fmt.Fprintf(tw, "Auth:\t%s %v\n", ui.FailTag(), err)
		tw.Flush()
		return fmt.Errorf("GitHub access is not configured")
	}
	fmt.Fprintf(tw, "Auth:\t%s ok\n", ui.OKTag())
	return tw.Flush()
}

// redact keeps only enough of a token to recognize it.
func redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
