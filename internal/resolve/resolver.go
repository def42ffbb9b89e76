// Package resolve finds the Kotlin compiler bundled with each IDE platform
// build and reconciles ij-flavored compiler versions with public dev builds.
package resolve

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/kotlinver"
	"github.com/majorcontext/idekotlin/internal/log"
	"github.com/majorcontext/idekotlin/internal/releases"
)

// MasterRef is the branch searched when an IDE tag has no matching dev build.
const MasterRef = "master"

// DefaultMinPlatformMajor is the first platform major that bundles Kotlin.
const DefaultMinPlatformMajor = 221

// Source is the read-only repository data the resolver needs.
// Errors are treated as absence.
type Source interface {
	KotlinVersionAt(ctx context.Context, ref string) (string, error)
	History(ctx context.Context, ref string) ([]github.Commit, error)
	NearestTag(ctx context.Context, major string) (string, error)
}

// RepoSource adapts a github.Repo and a tag lister to Source.
type RepoSource struct {
	Repo *github.Repo
	// Tags defaults to Repo.
	Tags github.TagLister
}

// KotlinVersionAt implements Source.
func (s *RepoSource) KotlinVersionAt(ctx context.Context, ref string) (string, error) {
	return s.Repo.KotlinVersionAt(ctx, ref)
}

// History implements Source.
func (s *RepoSource) History(ctx context.Context, ref string) ([]github.Commit, error) {
	return s.Repo.History(ctx, ref)
}

// NearestTag implements Source.
func (s *RepoSource) NearestTag(ctx context.Context, major string) (string, error) {
	var lister github.TagLister = s.Repo
	if s.Tags != nil {
		lister = s.Tags
	}
	return github.NearestTag(ctx, lister, major)
}

// Build is the resolution of one platform build.
type Build struct {
	Platform      string `json:"platform_build"`
	Tag           string `json:"tag"`
	KotlinVersion string `json:"kotlin_version"`
	DevVersion    string `json:"dev_version"`
}

// Resolver resolves platform builds against a Source.
type Resolver struct {
	Source Source
	Caches *Caches

	// MinKotlin drops builds whose Kotlin base version is older.
	MinKotlin kotlinver.Base

	// MinPlatformMajor skips builds older than the first Kotlin-bundling platform.
	MinPlatformMajor int

	// Skip defaults to NoSkip.
	Skip SkipPolicy

	// Progress receives one block of human-readable lines per build.
	Progress io.Writer
}

// NewResolver returns a Resolver with empty caches and the major-skip heuristic.
func NewResolver(src Source, minKotlin kotlinver.Base) *Resolver {
	return &Resolver{
		Source:           src,
		Caches:           NewCaches(),
		MinKotlin:        minKotlin,
		MinPlatformMajor: DefaultMinPlatformMajor,
		Skip:             NewMajorSkip(),
	}
}

func (r *Resolver) progress() io.Writer {
	if r.Progress == nil {
		return io.Discard
	}
	return r.Progress
}

func (r *Resolver) skip() SkipPolicy {
	if r.Skip == nil {
		return NoSkip{}
	}
	return r.Skip
}

func (r *Resolver) caches() *Caches {
	if r.Caches == nil {
		r.Caches = NewCaches()
	}
	return r.Caches
}

// ResolveTag finds the tag and Kotlin version for a platform build: the exact
// idea/<build> tag first, then the most recent tag of the build's major.
func (r *Resolver) ResolveTag(ctx context.Context, build string) (tag, version string, ok bool) {
	tag = github.BuildTag(build)
	v, err := r.Source.KotlinVersionAt(ctx, tag)
	if err == nil {
		return tag, v, true
	}
	log.Debug("exact tag has no Kotlin version", "tag", tag, "error", err)

	nearest := r.nearestTag(ctx, releases.PlatformMajor(build))
	if nearest == "" {
		return "", "", false
	}
	v, err = r.Source.KotlinVersionAt(ctx, nearest)
	if err != nil {
		log.Debug("nearest tag has no Kotlin version", "tag", nearest, "error", err)
		return "", "", false
	}
	return nearest, v, true
}

func (r *Resolver) nearestTag(ctx context.Context, major string) string {
	cache := r.caches().NearestTag
	if tag, ok := cache.Get(major); ok {
		return tag
	}
	tag, err := r.Source.NearestTag(ctx, major)
	if err != nil {
		log.Debug("listing tags failed", "major", major, "error", err)
		tag = ""
	}
	cache.Set(major, tag)
	return tag
}

// DevBuild reconciles version at tag with a dev build, memoized per
// (tag, version).
func (r *Resolver) DevBuild(ctx context.Context, tag, version string) string {
	key := devBuildKey(tag, version)
	cache := r.caches().DevBuild
	if dev, ok := cache.Get(key); ok {
		return dev
	}

	var tagHistory []github.Commit
	if kotlinver.IsIJ(version) {
		tagHistory = r.history(ctx, tag)
	}
	dev := Reconcile(version, tagHistory, func() []github.Commit {
		return r.history(ctx, MasterRef)
	})
	cache.Set(key, dev)
	return dev
}

func (r *Resolver) history(ctx context.Context, ref string) []github.Commit {
	commits, err := r.Source.History(ctx, ref)
	if err != nil {
		log.Debug("history fetch failed", "ref", ref, "error", err)
		return nil
	}
	return commits
}

// ResolveAll resolves every group once and returns the results keyed by
// platform build. Groups that are skipped, unresolvable or below MinKotlin
// are absent from the result.
func (r *Resolver) ResolveAll(ctx context.Context, groups []releases.Group) map[string]Build {
	out := r.progress()
	skip := r.skip()
	resolved := make(map[string]Build)

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		major := releases.PlatformMajor(g.Build)
		if skip.Skip(major) || r.belowPlatformFloor(major) {
			log.Debug("skipping build", "build", g.Build, "major", major)
			continue
		}

		fmt.Fprintf(out, "━━━ %s (build %s) ━━━\n", g.Representative().Name, g.Build)

		tag, version, ok := r.ResolveTag(ctx, g.Build)
		if !ok {
			fmt.Fprintf(out, "  Could not resolve Kotlin version, skipping\n\n")
			skip.MarkTooOld(major)
			continue
		}

		if kotlinver.ParseBase(version).Less(r.MinKotlin) {
			fmt.Fprintf(out, "  Kotlin %s < %s, skipping\n\n", version, r.MinKotlin)
			skip.MarkTooOld(major)
			continue
		}

		fmt.Fprintf(out, "  Tag: %s\n", tag)
		fmt.Fprintf(out, "  Kotlin version: %s\n", version)

		if _, ok := r.caches().DevBuild.Get(devBuildKey(tag, version)); !ok {
			fmt.Fprintf(out, "  Resolving to dev build...\n")
		}
		dev := r.DevBuild(ctx, tag, version)
		fmt.Fprintf(out, "  Dev build: %s\n\n", dev)

		resolved[g.Build] = Build{
			Platform:      g.Build,
			Tag:           tag,
			KotlinVersion: version,
			DevVersion:    dev,
		}
	}
	return resolved
}

// belowPlatformFloor reports whether major predates Kotlin bundling.
// Non-numeric majors count as 0.
func (r *Resolver) belowPlatformFloor(major string) bool {
	n, err := strconv.Atoi(major)
	if err != nil {
		n = 0
	}
	return n < r.MinPlatformMajor
}
