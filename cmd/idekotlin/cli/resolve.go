package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/majorcontext/idekotlin/internal/alias"
	"github.com/majorcontext/idekotlin/internal/config"
	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/kotlinver"
	"github.com/majorcontext/idekotlin/internal/log"
	"github.com/majorcontext/idekotlin/internal/releases"
	"github.com/majorcontext/idekotlin/internal/resolve"
	"github.com/majorcontext/idekotlin/internal/ui"
)

const defaultChannels = "stable,canary,beta,eap,rc"

// ResolveFlags holds the flags of the resolve run.
type ResolveFlags struct {
	Channels      string
	MinKotlin     string
	NoMajorSkip   bool
	GitHubBackend string
	TagSource     string
	JSON          bool
}

var resolveFlags ResolveFlags

func addResolveFlags(cmd *cobra.Command, f *ResolveFlags) {
	cmd.Flags().StringVar(&f.Channels, "channels", defaultChannels, "comma-separated release channels to include")
	cmd.Flags().StringVar(&f.MinKotlin, "min-kotlin", "",
		"minimum Kotlin base version (default: [versions].kotlin from gradle/libs.versions.toml, else "+config.DefaultMinKotlin+")")
	cmd.Flags().BoolVar(&f.NoMajorSkip, "no-major-skip", false, "resolve every build even after one build of its platform major was too old")
	cmd.Flags().StringVar(&f.GitHubBackend, "github-backend", "", "GitHub API backend: gh or api (overrides config)")
	cmd.Flags().StringVar(&f.TagSource, "tag-source", "", "how tags are listed: api or git (overrides config)")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "print results as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	c := *cfg
	if resolveFlags.GitHubBackend != "" {
		c.GitHub.Backend = resolveFlags.GitHubBackend
	}
	if resolveFlags.TagSource != "" {
		c.GitHub.TagSource = resolveFlags.TagSource
	}
	if err := c.Validate(); err != nil {
		return err
	}

	if resolveFlags.MinKotlin == "" {
		wd, _ := os.Getwd()
		v, source := config.DetectMinKotlin(wd)
		if source != "" {
			log.Debug("minimum Kotlin from version catalog", "version", v, "path", source)
		}
		resolveFlags.MinKotlin = v
	}

	ctx := cmd.Context()
	r := &runner{
		Config: &c,
		API:    newAPI(ctx, &c),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	return r.Run(ctx, resolveFlags)
}

// newAPI returns the configured GitHub backend. The REST backend is left
// without a token when none is found so the credential check reports it.
func newAPI(ctx context.Context, c *config.Config) github.API {
	if c.GitHub.Backend != config.BackendAPI {
		return &github.GHCLI{}
	}
	token, source, err := (&github.TokenResolver{}).Resolve(ctx)
	if err != nil {
		return &github.REST{BaseURL: c.GitHub.APIBaseURL}
	}
	log.Debug("using GitHub token", "source", source)
	rest := github.NewREST(token)
	rest.BaseURL = c.GitHub.APIBaseURL
	return rest
}

// runner performs one resolve run. Progress goes to Stderr, results to Stdout.
type runner struct {
	Config *config.Config
	API    github.API
	Stdout io.Writer
	Stderr io.Writer
}

func (r *runner) Run(ctx context.Context, f ResolveFlags) error {
	channels, err := releases.ParseChannels(f.Channels)
	if err != nil {
		return err
	}
	if _, ok := kotlinver.BaseString(f.MinKotlin); !ok {
		return fmt.Errorf("invalid --min-kotlin %q: expected X.Y.Z", f.MinKotlin)
	}
	minKotlin := kotlinver.ParseBase(f.MinKotlin)

	if err := checkCredentials(ctx, r.API); err != nil {
		return err
	}

	rels := r.fetchReleases(ctx, channels)
	if len(rels) == 0 {
		fmt.Fprintf(r.Stdout, "\nNo releases found for channels: %s\n", f.Channels)
		return nil
	}

	fmt.Fprintf(r.Stderr, "\nTotal: %d IDE releases\n", len(rels))
	fmt.Fprintf(r.Stderr, "Filtering to Kotlin >= %s\n", f.MinKotlin)
	groups := releases.GroupByBuild(rels)
	fmt.Fprintf(r.Stderr, "Unique platform builds: %d\n\n", len(groups))

	src, err := r.source()
	if err != nil {
		return err
	}
	res := resolve.NewResolver(src, minKotlin)
	res.Progress = r.Stderr
	if f.NoMajorSkip {
		res.Skip = resolve.NoSkip{}
	}
	resolved := res.ResolveAll(ctx, groups)
	if err := ctx.Err(); err != nil {
		return err
	}

	mappings := alias.Collapse(alias.Entries(groups, resolved))

	if f.JSON {
		var builds []resolve.Build
		for _, g := range groups {
			if b, ok := resolved[g.Build]; ok {
				builds = append(builds, b)
			}
		}
		return alias.WriteJSON(r.Stdout, alias.Report{Builds: builds, Aliases: mappings})
	}

	r.writeResults(mappings)
	return nil
}

func (r *runner) fetchReleases(ctx context.Context, channels releases.ChannelSet) []releases.Release {
	feeds := r.Config.Feeds

	fmt.Fprintln(r.Stderr, "Fetching IntelliJ IDEA releases...")
	ij, err := (&releases.IntelliJFeed{URL: feeds.IntelliJURL}).Fetch(ctx, channels)
	if err != nil {
		ui.Warnf("failed to fetch IntelliJ releases: %v", err)
	}
	fmt.Fprintf(r.Stderr, "  Found %d IntelliJ releases\n", len(ij))

	fmt.Fprintln(r.Stderr, "Fetching Android Studio releases...")
	as, err := (&releases.AndroidStudioFeed{URL: feeds.AndroidStudioURL}).Fetch(ctx, channels)
	if err != nil {
		ui.Warnf("failed to fetch Android Studio releases: %v", err)
	}
	fmt.Fprintf(r.Stderr, "  Found %d Android Studio releases\n", len(as))

	return append(ij, as...)
}

func (r *runner) source() (*resolve.RepoSource, error) {
	gh := r.Config.GitHub
	repo, err := github.NewRepo(gh.Repo, r.API)
	if err != nil {
		return nil, fmt.Errorf("github.repo: %w", err)
	}
	repo.RawBaseURL = gh.RawBaseURL

	src := &resolve.RepoSource{Repo: repo}
	if gh.TagSource == config.TagSourceGit {
		src.Tags = &github.RemoteTags{URL: github.CloneURL(repo.FullName())}
	}
	return src, nil
}

func (r *runner) writeResults(mappings []alias.Mapping) {
	w := r.Stdout
	fmt.Fprintln(w)
	ui.Banner(w, " RESULTS")
	fmt.Fprintln(w)

	if len(mappings) == 0 {
		fmt.Fprintln(w, "No aliases needed (all versions are already dev builds).")
		fmt.Fprintln(w)
		return
	}

	alias.WriteTable(w, mappings)
	fmt.Fprintln(w)
	ui.Rule(w)
	fmt.Fprintln(w)
	alias.WriteMapLiteral(w, mappings)
	fmt.Fprintln(w)
}

// checkCredentials verifies GitHub access before any work starts and prints
// what to do when it is missing.
func checkCredentials(ctx context.Context, api github.API) error {
	err := api.CheckAuth(ctx)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, github.ErrGHNotFound):
		ui.Info("'gh' (GitHub CLI) is required but not found.")
		ui.Info("Install it from https://cli.github.com/")
	case errors.Is(err, github.ErrGHNotAuthenticated):
		ui.Info("'gh' (GitHub CLI) is not logged in.")
		ui.Info("Run 'gh auth login', or use --github-backend api with a GITHUB_TOKEN.")
	case errors.Is(err, github.ErrNoToken):
		ui.Info("No GitHub token found for the api backend.")
		ui.Info("Set GITHUB_TOKEN, run 'idekotlin auth set-token', or log in with 'gh auth login'.")
	}
	return fmt.Errorf("checking GitHub access: %w", err)
}
