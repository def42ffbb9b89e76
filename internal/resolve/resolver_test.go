package resolve

import (
	"bytes"
	"context"
	"testing"

	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/kotlinver"
	"github.com/majorcontext/idekotlin/internal/releases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	versions  map[string]string
	histories map[string][]github.Commit
	tags      map[string]string

	versionCalls map[string]int
	historyCalls map[string]int
	tagCalls     map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		versions:     map[string]string{},
		histories:    map[string][]github.Commit{},
		tags:         map[string]string{},
		versionCalls: map[string]int{},
		historyCalls: map[string]int{},
		tagCalls:     map[string]int{},
	}
}

func (f *fakeSource) KotlinVersionAt(ctx context.Context, ref string) (string, error) {
	f.versionCalls[ref]++
	v, ok := f.versions[ref]
	if !ok {
		return "", github.ErrNotFound
	}
	return v, nil
}

func (f *fakeSource) History(ctx context.Context, ref string) ([]github.Commit, error) {
	f.historyCalls[ref]++
	h, ok := f.histories[ref]
	if !ok {
		return nil, github.ErrNotFound
	}
	return h, nil
}

func (f *fakeSource) NearestTag(ctx context.Context, major string) (string, error) {
	f.tagCalls[major]++
	return f.tags[major], nil
}

func TestResolveTag(t *testing.T) {
	src := newFakeSource()
	src.versions["idea/252.1.2"] = "2.2.20-ij252-24"
	src.versions["idea/251.9.9"] = "2.1.20-ij251-7"
	src.tags["251"] = "idea/251.9.9"

	r := NewResolver(src, kotlinver.Base{})
	ctx := context.Background()

	tag, v, ok := r.ResolveTag(ctx, "252.1.2")
	require.True(t, ok)
	assert.Equal(t, "idea/252.1.2", tag)
	assert.Equal(t, "2.2.20-ij252-24", v)
	assert.Zero(t, src.tagCalls["252"], "exact hit must not list tags")

	tag, v, ok = r.ResolveTag(ctx, "251.5.5")
	require.True(t, ok)
	assert.Equal(t, "idea/251.9.9", tag)
	assert.Equal(t, "2.1.20-ij251-7", v)

	_, _, ok = r.ResolveTag(ctx, "251.6.6")
	require.True(t, ok)
	assert.Equal(t, 1, src.tagCalls["251"], "nearest tag is cached per major")

	_, _, ok = r.ResolveTag(ctx, "240.1")
	assert.False(t, ok)
	_, _, ok = r.ResolveTag(ctx, "240.2")
	assert.False(t, ok)
	assert.Equal(t, 1, src.tagCalls["240"], "a missing nearest tag is cached too")
}

func TestDevBuild_Cached(t *testing.T) {
	src := newFakeSource()
	src.histories["idea/252.1.2"] = []github.Commit{
		commit("2024-05-10", "Bump to 2.2.20-ij252-24"),
		commit("2024-05-01", "Bump to 2.2.20-dev-200"),
	}
	r := NewResolver(src, kotlinver.Base{})
	ctx := context.Background()

	assert.Equal(t, "2.2.20-dev-200", r.DevBuild(ctx, "idea/252.1.2", "2.2.20-ij252-24"))
	assert.Equal(t, "2.2.20-dev-200", r.DevBuild(ctx, "idea/252.1.2", "2.2.20-ij252-24"))
	assert.Equal(t, 1, src.historyCalls["idea/252.1.2"])
	assert.Zero(t, src.historyCalls[MasterRef])
	assert.Equal(t, 1, r.Caches.DevBuild.Len())
}

func TestDevBuild_HistoryFailureFallsBackToInput(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, kotlinver.Base{})

	got := r.DevBuild(context.Background(), "idea/252.1.2", "2.2.20-ij252-24")
	assert.Equal(t, "2.2.20-ij252-24", got)
	assert.Equal(t, 1, src.historyCalls[MasterRef])
}

func TestDevBuild_NoHistoryForPlainVersions(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, kotlinver.Base{})

	assert.Equal(t, "2.3.0", r.DevBuild(context.Background(), "idea/253.1", "2.3.0"))
	assert.Empty(t, src.historyCalls)
}

func TestResolveAll_DeduplicatesBuilds(t *testing.T) {
	src := newFakeSource()
	src.versions["idea/252.1.2"] = "2.2.20-ij252-24"
	src.histories["idea/252.1.2"] = []github.Commit{
		commit("2024-05-10", "Bump to 2.2.20-ij252-24"),
		commit("2024-05-01", "Bump to 2.2.20-dev-200"),
	}

	groups := releases.GroupByBuild([]releases.Release{
		{Name: "IntelliJ IDEA 2025.2 (stable)", PlatformBuild: "252.1.2"},
		{Name: "Android Studio Otter (canary)", PlatformBuild: "252.1.2", AndroidStudio: true},
	})

	r := NewResolver(src, kotlinver.ParseBase("2.2.0"))
	got := r.ResolveAll(context.Background(), groups)

	assert.Equal(t, map[string]Build{
		"252.1.2": {
			Platform:      "252.1.2",
			Tag:           "idea/252.1.2",
			KotlinVersion: "2.2.20-ij252-24",
			DevVersion:    "2.2.20-dev-200",
		},
	}, got)
	assert.Equal(t, 1, src.versionCalls["idea/252.1.2"])
	assert.Equal(t, 1, src.historyCalls["idea/252.1.2"])
}

func TestResolveAll_SharedTagReconciledOnce(t *testing.T) {
	src := newFakeSource()
	src.tags["252"] = "idea/252.9"
	src.versions["idea/252.9"] = "2.2.20-ij252-24"
	src.histories["idea/252.9"] = []github.Commit{commit("2024-05-01", "Bump to 2.2.20-dev-200")}

	groups := releases.GroupByBuild([]releases.Release{
		{Name: "A", PlatformBuild: "252.1"},
		{Name: "B", PlatformBuild: "252.2"},
	})

	var progress bytes.Buffer
	r := NewResolver(src, kotlinver.Base{})
	r.Progress = &progress
	got := r.ResolveAll(context.Background(), groups)

	require.Len(t, got, 2)
	assert.Equal(t, "idea/252.9", got["252.2"].Tag)
	assert.Equal(t, 1, src.historyCalls["idea/252.9"])
	assert.Equal(t, 1, bytes.Count(progress.Bytes(), []byte("Resolving to dev build...")))
}

func TestResolveAll_MajorSkipPropagation(t *testing.T) {
	src := newFakeSource()
	src.versions["idea/243.3"] = "2.0.20-ij243-1"
	src.versions["idea/243.2"] = "2.2.20-ij243-9"
	src.versions["idea/252.1"] = "2.2.20-ij252-24"

	groups := releases.GroupByBuild([]releases.Release{
		{Name: "old", PlatformBuild: "243.3"},
		{Name: "would pass", PlatformBuild: "243.2"},
		{Name: "new", PlatformBuild: "252.1"},
	})

	var progress bytes.Buffer
	r := NewResolver(src, kotlinver.ParseBase("2.2.20"))
	r.Progress = &progress
	got := r.ResolveAll(context.Background(), groups)

	assert.Contains(t, got, "252.1")
	assert.NotContains(t, got, "243.2")
	assert.Zero(t, src.versionCalls["idea/243.2"], "skipped major must not be resolved again")
	assert.Contains(t, progress.String(), "Kotlin 2.0.20-ij243-1 < 2.2.20, skipping")
}

func TestResolveAll_NoSkipResolvesEveryBuild(t *testing.T) {
	src := newFakeSource()
	src.versions["idea/243.3"] = "2.0.20-ij243-1"
	src.versions["idea/243.2"] = "2.2.20"

	groups := releases.GroupByBuild([]releases.Release{
		{Name: "old", PlatformBuild: "243.3"},
		{Name: "newer", PlatformBuild: "243.2"},
	})

	r := NewResolver(src, kotlinver.ParseBase("2.2.20"))
	r.Skip = NoSkip{}
	got := r.ResolveAll(context.Background(), groups)

	assert.Contains(t, got, "243.2")
	assert.Equal(t, 1, src.versionCalls["idea/243.2"])
}

func TestResolveAll_UnresolvableMajorIsSkipped(t *testing.T) {
	src := newFakeSource()
	groups := releases.GroupByBuild([]releases.Release{
		{Name: "a", PlatformBuild: "260.1"},
		{Name: "b", PlatformBuild: "260.2"},
	})

	var progress bytes.Buffer
	r := NewResolver(src, kotlinver.Base{})
	r.Progress = &progress
	got := r.ResolveAll(context.Background(), groups)

	assert.Empty(t, got)
	assert.Equal(t, 1, src.versionCalls["idea/260.1"])
	assert.Zero(t, src.versionCalls["idea/260.2"])
	assert.Contains(t, progress.String(), "Could not resolve Kotlin version, skipping")
}

func TestResolveAll_PlatformFloor(t *testing.T) {
	src := newFakeSource()
	src.versions["idea/213.1"] = "1.6.0"

	groups := releases.GroupByBuild([]releases.Release{
		{Name: "ancient", PlatformBuild: "213.1"},
		{Name: "garbage", PlatformBuild: "AI.1"},
	})

	r := NewResolver(src, kotlinver.Base{})
	assert.Empty(t, r.ResolveAll(context.Background(), groups))
	assert.Empty(t, src.versionCalls)
}

func TestMajorSkip(t *testing.T) {
	m := NewMajorSkip()
	assert.False(t, m.Skip("243"))
	m.MarkTooOld("243")
	assert.True(t, m.Skip("243"))
	assert.False(t, m.Skip("252"))
	assert.Equal(t, 1, m.Majors())

	var n NoSkip
	n.MarkTooOld("243")
	assert.False(t, n.Skip("243"))
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Empty(t, v)

	c.Set("k2", "v2")
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Zero(t, c.Len())
}
