// Package github reads the tracked Kotlin library descriptor from the
// intellij-community repository: its raw content at a ref, its commit history,
// and the tags it can be read at.
//
// The hosting API is reached through an API backend (the gh CLI or plain REST);
// raw file content always comes from raw.githubusercontent.com.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultRepo is the repository whose tags and history are inspected.
	DefaultRepo = "JetBrains/intellij-community"

	// DefaultRawBaseURL serves raw file content by ref.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	// LibraryPath is the descriptor that pins the bundled Kotlin compiler.
	LibraryPath = ".idea/libraries/kotlinc_kotlin_compiler_common.xml"

	// HistoryPageSize bounds every history query.
	HistoryPageSize = 30

	// RequestTimeout applies to raw fetches and API calls.
	RequestTimeout = 30 * time.Second

	userAgent = "idekotlin"
)

// ErrNotFound is returned when a file, ref or version is absent.
var ErrNotFound = errors.New("not found")

var compilerCoordRe = regexp.MustCompile(`kotlin-compiler-common-for-ide:([^"]+)"`)

// API performs authenticated read-only calls against the hosting API.
// Endpoints are relative, e.g. "repos/o/r/commits?sha=master".
type API interface {
	// Get returns the response body of a successful call.
	Get(ctx context.Context, endpoint string) ([]byte, error)

	// CheckAuth verifies that the backend can make authenticated calls.
	CheckAuth(ctx context.Context) error

	// Name identifies the backend in diagnostics.
	Name() string
}

// TagLister lists tag names (without the refs/tags/ prefix) starting with prefix.
type TagLister interface {
	MatchingTags(ctx context.Context, prefix string) ([]string, error)
}

// Commit is one history entry for the tracked file.
type Commit struct {
	// Date is the committer date as returned by the API (RFC 3339).
	Date string
	// Subject is the first line of the commit message.
	Subject string
}

// ShortDate returns the YYYY-MM-DD part of Date. Dates compare at day
// granularity as plain strings.
func (c Commit) ShortDate() string {
	day, _, _ := strings.Cut(c.Date, "T")
	return day
}

// Repo is a read-only view of one repository.
type Repo struct {
	Owner string
	Name  string

	// API backs History and MatchingTags.
	API API

	// RawBaseURL defaults to DefaultRawBaseURL.
	RawBaseURL string

	// HTTPClient is used for raw fetches. If nil, a client with
	// RequestTimeout is used.
	HTTPClient *http.Client
}

// NewRepo returns a Repo for "owner/name".
func NewRepo(fullName string, api API) (*Repo, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("expected owner/name, got %q", fullName)
	}
	return &Repo{Owner: owner, Name: name, API: api}, nil
}

// FullName returns "owner/name".
func (r *Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// FileAt returns the raw content of path at ref.
func (r *Repo) FileAt(ctx context.Context, ref, path string) ([]byte, error) {
	base := r.RawBaseURL
	if base == "" {
		base = DefaultRawBaseURL
	}
	fileURL, err := url.JoinPath(base, r.Owner, r.Name, ref, path)
	if err != nil {
		return nil, fmt.Errorf("building raw URL: %w", err)
	}

	client := r.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, fileURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileURL, err)
	}
	return body, nil
}

// KotlinVersionAt returns the Kotlin compiler version pinned by LibraryPath at ref.
func (r *Repo) KotlinVersionAt(ctx context.Context, ref string) (string, error) {
	body, err := r.FileAt(ctx, ref, LibraryPath)
	if err != nil {
		return "", err
	}
	version, ok := ParseCompilerVersion(body)
	if !ok {
		return "", fmt.Errorf("compiler coordinate in %s at %s: %w", LibraryPath, ref, ErrNotFound)
	}
	return version, nil
}

// ParseCompilerVersion extracts the version from a
// "kotlin-compiler-common-for-ide:<version>" coordinate.
func ParseCompilerVersion(descriptor []byte) (string, bool) {
	m := compilerCoordRe.FindSubmatch(descriptor)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

type apiCommit struct {
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
		Message string `json:"message"`
	} `json:"commit"`
}

// History returns up to HistoryPageSize commits touching LibraryPath at ref,
// newest first.
func (r *Repo) History(ctx context.Context, ref string) ([]Commit, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/commits?sha=%s&path=%s&per_page=%d",
		r.Owner, r.Name, url.QueryEscape(ref), url.QueryEscape(LibraryPath), HistoryPageSize)

	body, err := r.API.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching history at %s: %w", ref, err)
	}

	var raw []apiCommit
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding history at %s: %w", ref, err)
	}

	commits := make([]Commit, 0, len(raw))
	for _, c := range raw {
		subject, _, _ := strings.Cut(c.Commit.Message, "\n")
		commits = append(commits, Commit{
			Date:    c.Commit.Committer.Date,
			Subject: subject,
		})
	}
	return commits, nil
}

type apiRef struct {
	Ref string `json:"ref"`
}

// MatchingTags lists tags starting with prefix through the git matching-refs API.
func (r *Repo) MatchingTags(ctx context.Context, prefix string) ([]string, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/git/matching-refs/tags/%s", r.Owner, r.Name, prefix)

	body, err := r.API.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing tags %s*: %w", prefix, err)
	}

	var refs []apiRef
	if err := json.Unmarshal(body, &refs); err != nil {
		return nil, fmt.Errorf("decoding tags %s*: %w", prefix, err)
	}

	tags := make([]string, 0, len(refs))
	for _, ref := range refs {
		if tag := strings.TrimPrefix(ref.Ref, "refs/tags/"); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
