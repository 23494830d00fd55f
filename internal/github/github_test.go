package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClient(api, web string) *Client {
	c := NewClient("")
	c.apiBase = api
	c.webBase = web
	return c
}

func TestLatestRelease_CachesSuccess(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/repos/psource/ps-chat/releases/latest", r.URL.Path)
		fmt.Fprint(w, `{"tag_name":"v2.4.1","name":"2.4.1","body":"fixes","zipball_url":"https://example.com/psource/ps-chat/zipball/v2.4.1","assets":[]}`)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	r1, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, "2.4.1", r1.Version)
	require.Equal(t, "v2.4.1", r1.TagName)

	r2, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, r1.Version, r2.Version)
	require.Equal(t, int32(1), calls.Load(), "second lookup must come from cache")
}

func TestLatestRelease_PrefersZipAsset(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"1.0.0","zipball_url":"https://example.com/zipball",
			"assets":[
				{"name":"checksums.txt","browser_download_url":"https://example.com/checksums.txt"},
				{"name":"ps-chat.zip","browser_download_url":"https://example.com/ps-chat.zip"}
			]}`)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	r, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/ps-chat.zip", r.DownloadURL)
}

func TestLatestRelease_NotFoundNeverCached(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	_, err := c.LatestRelease("psource/gone")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.LatestRelease("psource/gone")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, int32(2), calls.Load(), "errors must not be cached")
}

func TestLatestRelease_RateLimitFallsBackToReleasesPage(t *testing.T) {
	var apiCalls, webCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()
	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webCalls.Add(1)
		fmt.Fprint(w, `<html><a href="/psource/ps-chat/releases/download/v2.4.1/ps-chat.zip">download</a></html>`)
	}))
	defer web.Close()

	c := testClient(api.URL, web.URL)
	r, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, web.URL+"/psource/ps-chat/releases/download/v2.4.1/ps-chat.zip", r.DownloadURL)
	require.Empty(t, r.Version, "scraped results carry no tag metadata")

	// Fallback results are never cached; the next lookup goes upstream again.
	_, err = c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, int32(2), apiCalls.Load())
	require.Equal(t, int32(2), webCalls.Load())
}

func TestLatestRelease_RateLimitWithoutAssetUsesBranchArchive(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()
	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>no packaged releases here</html>`)
	}))
	defer web.Close()

	c := testClient(api.URL, web.URL)
	r, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, web.URL+"/psource/ps-chat/archive/refs/heads/main.zip", r.DownloadURL)
}

func TestLatestRelease_RateLimitAndDeadReleasesPage(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()
	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer web.Close()

	c := testClient(api.URL, web.URL)
	_, err := c.LatestRelease("psource/ps-chat")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestLatestRelease_UnexpectedStatus(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	_, err := c.LatestRelease("psource/ps-chat")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClearCache(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"tag_name":"1.0.0","zipball_url":"https://example.com/z"}`)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	_, err := c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	c.ClearCache("psource/ps-chat")
	_, err = c.LatestRelease("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestRepoInfo(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/psource/ps-chat", r.URL.Path)
		fmt.Fprint(w, `{"name":"ps-chat","description":"chat plugin","stargazers_count":12,"forks_count":3,"open_issues_count":1,"html_url":"https://github.com/psource/ps-chat"}`)
	}))
	defer api.Close()

	c := testClient(api.URL, "")
	info, err := c.Repo("psource/ps-chat")
	require.NoError(t, err)
	require.Equal(t, "ps-chat", info.Name)
	require.Equal(t, 12, info.Stars)
}
