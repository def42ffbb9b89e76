package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREST_Get(t *testing.T) {
	var gotAuth, gotAccept, gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotURI = r.URL.RequestURI()
		switch r.URL.Path {
		case "/repos/o/r/commits":
			w.Write([]byte(`[]`))
		case "/repos/o/r/limited":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	api := NewREST("secret")
	api.BaseURL = server.URL
	api.HTTPClient = server.Client()
	assert.Equal(t, "api", api.Name())

	body, err := api.Get(context.Background(), "repos/o/r/commits?sha=master&per_page=30")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
	assert.Equal(t, "/repos/o/r/commits?sha=master&per_page=30", gotURI)

	_, err = api.Get(context.Background(), "repos/o/r/missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = api.Get(context.Background(), "repos/o/r/limited")
	assert.ErrorContains(t, err, "unexpected status 403")
}

func TestREST_CheckAuth(t *testing.T) {
	assert.NoError(t, NewREST("tok").CheckAuth(context.Background()))
	assert.ErrorIs(t, NewREST("").CheckAuth(context.Background()), ErrNoToken)
	assert.ErrorIs(t, (&REST{}).CheckAuth(context.Background()), ErrNoToken)
}

func TestREST_BacksRepo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/JetBrains/intellij-community/git/matching-refs/tags/idea/251.", r.URL.Path)
		w.Write([]byte(`[{"ref": "refs/tags/idea/251.1"}, {"ref": "refs/tags/idea/251.27812.49"}]`))
	}))
	defer server.Close()

	api := NewREST("tok")
	api.BaseURL = server.URL
	repo, err := NewRepo(DefaultRepo, api)
	require.NoError(t, err)

	tag, err := NearestTag(context.Background(), repo, "251")
	require.NoError(t, err)
	assert.Equal(t, "idea/251.27812.49", tag)
}
