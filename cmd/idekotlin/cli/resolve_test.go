package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/idekotlin/internal/config"
	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/ui"
)

// stubAPI serves canned bodies for endpoints starting with a key.
type stubAPI struct {
	authErr error
	bodies  map[string]string
	calls   []string
}

func (s *stubAPI) Name() string { return "stub" }

func (s *stubAPI) CheckAuth(context.Context) error { return s.authErr }

func (s *stubAPI) Get(_ context.Context, endpoint string) ([]byte, error) {
	s.calls = append(s.calls, endpoint)
	for prefix, body := range s.bodies {
		if strings.HasPrefix(endpoint, prefix) {
			return []byte(body), nil
		}
	}
	return nil, github.ErrNotFound
}

type fixture struct {
	intellij      string
	androidStudio string
	// descriptors maps a ref to the Kotlin version its library descriptor pins.
	descriptors map[string]string
}

func (f fixture) serve(t *testing.T) *config.Config {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products/releases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.intellij)
	})
	mux.HandleFunc("/updates.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, f.androidStudio)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		for ref, v := range f.descriptors {
			if r.URL.Path == "/raw/JetBrains/intellij-community/"+ref+"/"+github.LibraryPath {
				fmt.Fprintf(w, `<properties maven-id="org.jetbrains.kotlin:kotlin-compiler-common-for-ide:%s" />`, v)
				return
			}
		}
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := config.Default()
	c.Feeds.IntelliJURL = server.URL + "/products/releases"
	c.Feeds.AndroidStudioURL = server.URL + "/updates.xml"
	c.GitHub.RawBaseURL = server.URL + "/raw"
	return c
}

const studioFeed = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <product name="Android Studio">
    <channel id="AI-1-release" status="release">
      <build number="AI-252.100.1.2" version="2025.2.1" name="Otter" apiVersion="AI-252.100"/>
      <build number="AI-213.5" version="2021.3.1" name="Dolphin" apiVersion="AI-213.5"/>
    </channel>
  </product>
</products>`

const tagHistory = `[
  {"commit": {"committer": {"date": "2025-05-10T10:00:00Z"}, "message": "Bump to 2.2.20-ij252-24\n\nDetails"}},
  {"commit": {"committer": {"date": "2025-05-01T10:00:00Z"}, "message": "Bump to 2.2.20-dev-200"}}
]`

func newTestRunner(t *testing.T, c *config.Config, api github.API) (*runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	ui.SetColorEnabled(false)
	var stdout, stderr bytes.Buffer
	ui.SetWriter(&stderr)
	t.Cleanup(func() { ui.SetWriter(nil) })
	return &runner{Config: c, API: api, Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func defaultFlags() ResolveFlags {
	return ResolveFlags{Channels: defaultChannels, MinKotlin: "2.2.0"}
}

func TestRun_Aliases(t *testing.T) {
	c := fixture{
		intellij:      `{"IIU": [{"version": "2025.2", "build": "252.100", "type": "release"}]}`,
		androidStudio: studioFeed,
		descriptors:   map[string]string{"idea/252.100": "2.2.20-ij252-24"},
	}.serve(t)
	api := &stubAPI{bodies: map[string]string{
		"repos/JetBrains/intellij-community/commits?sha=idea%2F252.100&": tagHistory,
	}}

	r, stdout, stderr := newTestRunner(t, c, api)
	require.NoError(t, r.Run(context.Background(), defaultFlags()))

	progress := stderr.String()
	assert.Contains(t, progress, "Found 1 IntelliJ releases")
	assert.Contains(t, progress, "Found 2 Android Studio releases")
	assert.Contains(t, progress, "Unique platform builds: 2")
	assert.Contains(t, progress, "━━━ IntelliJ IDEA 2025.2 (stable) (build 252.100) ━━━")
	assert.Contains(t, progress, "  Dev build: 2.2.20-dev-200")
	assert.NotContains(t, progress, "213.5", "builds before the first Kotlin-bundling platform are skipped")

	out := stdout.String()
	assert.Contains(t, out, "RESULTS")
	assert.Contains(t, out, "2.2.20-ij252-24           → 2.2.20-dev-200")
	assert.Contains(t, out, "2.2.255-dev-255           → 2.2.20-dev-200")
	assert.Contains(t, out, "    // Android Studio Otter (stable)\n    \"2.2.255-dev-255\" to \"2.2.20-dev-200\",\n")
	assert.Contains(t, out, "    // IntelliJ IDEA 2025.2 (stable)\n    \"2.2.20-ij252-24\" to \"2.2.20-dev-200\",\n")

	assert.Len(t, api.calls, 1, "one build, one history fetch")
}

func TestRun_JSON(t *testing.T) {
	c := fixture{
		intellij:      `{"IIU": [{"version": "2025.2", "build": "252.100", "type": "release"}]}`,
		androidStudio: studioFeed,
		descriptors:   map[string]string{"idea/252.100": "2.2.20-ij252-24"},
	}.serve(t)
	api := &stubAPI{bodies: map[string]string{
		"repos/JetBrains/intellij-community/commits?sha=idea%2F252.100&": tagHistory,
	}}

	r, stdout, _ := newTestRunner(t, c, api)
	flags := defaultFlags()
	flags.JSON = true
	require.NoError(t, r.Run(context.Background(), flags))

	var report struct {
		Builds []struct {
			Platform   string `json:"platform_build"`
			DevVersion string `json:"dev_version"`
		} `json:"builds"`
		Aliases []struct {
			Label string   `json:"label"`
			IDEs  []string `json:"ides"`
		} `json:"aliases"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Builds, 1)
	assert.Equal(t, "252.100", report.Builds[0].Platform)
	assert.Equal(t, "2.2.20-dev-200", report.Builds[0].DevVersion)
	require.Len(t, report.Aliases, 2)
	assert.Equal(t, "2.2.20-ij252-24", report.Aliases[0].Label)
	assert.Equal(t, "2.2.255-dev-255", report.Aliases[1].Label)
}

func TestRun_NoAliasesNeeded(t *testing.T) {
	c := fixture{
		intellij:      `{"IIU": [{"version": "2025.3", "build": "253.7", "type": "release"}]}`,
		androidStudio: `<products><channel id="AI-1-release"></channel></products>`,
		descriptors:   map[string]string{"idea/253.7": "2.3.0"},
	}.serve(t)

	r, stdout, _ := newTestRunner(t, c, &stubAPI{})
	require.NoError(t, r.Run(context.Background(), defaultFlags()))
	assert.Contains(t, stdout.String(), "No aliases needed (all versions are already dev builds).")
	assert.NotContains(t, stdout.String(), "mapOf(")
}

func TestRun_NoReleases(t *testing.T) {
	c := fixture{
		intellij:      `{"IIU": []}`,
		androidStudio: `<products><channel id="AI-1-release"></channel></products>`,
	}.serve(t)

	r, stdout, _ := newTestRunner(t, c, &stubAPI{})
	flags := defaultFlags()
	flags.Channels = "stable"
	require.NoError(t, r.Run(context.Background(), flags))
	assert.Equal(t, "\nNo releases found for channels: stable\n", stdout.String())
}

func TestRun_FeedFailureIsNotFatal(t *testing.T) {
	c := fixture{
		intellij:    `{"IIU": [{"version": "2025.3", "build": "253.7", "type": "release"}]}`,
		descriptors: map[string]string{"idea/253.7": "2.3.0"},
	}.serve(t)
	c.Feeds.AndroidStudioURL = c.Feeds.IntelliJURL + "/missing.xml"

	r, stdout, stderr := newTestRunner(t, c, &stubAPI{})
	require.NoError(t, r.Run(context.Background(), defaultFlags()))
	assert.Contains(t, stderr.String(), "Warning: failed to fetch Android Studio releases")
	assert.Contains(t, stdout.String(), "No aliases needed")
}

func TestRun_CredentialCheck(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"gh missing", github.ErrGHNotFound, "Install it from https://cli.github.com/"},
		{"gh logged out", github.ErrGHNotAuthenticated, "gh auth login"},
		{"no token", github.ErrNoToken, "GITHUB_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			c.Feeds.IntelliJURL = "http://127.0.0.1:0/unused"

			r, stdout, stderr := newTestRunner(t, c, &stubAPI{authErr: fmt.Errorf("%w: details", tt.err)})
			err := r.Run(context.Background(), defaultFlags())
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, stderr.String(), tt.hint)
			assert.Empty(t, stdout.String())
			assert.NotContains(t, stderr.String(), "Fetching", "nothing is fetched before the check passes")
		})
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	r, _, _ := newTestRunner(t, config.Default(), &stubAPI{})

	flags := defaultFlags()
	flags.Channels = "stable,nightly"
	assert.Error(t, r.Run(context.Background(), flags))

	flags = defaultFlags()
	flags.MinKotlin = "latest"
	assert.ErrorContains(t, r.Run(context.Background(), flags), "--min-kotlin")
}

func TestNewAPI(t *testing.T) {
	c := config.Default()
	assert.IsType(t, &github.GHCLI{}, newAPI(context.Background(), c))

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	c.GitHub.Backend = config.BackendAPI
	c.GitHub.APIBaseURL = "http://localhost:1"
	api := newAPI(context.Background(), c)
	rest, ok := api.(*github.REST)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:1", rest.BaseURL)
	assert.NoError(t, rest.CheckAuth(context.Background()))
}
