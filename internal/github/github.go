// Package github resolves release artifacts for the catalog's source
// repositories, with a 12 hour cache and a releases-page fallback for
// rate-limited responses.
package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/psource-dev/psman/internal/version"
)

const (
	releaseCacheTTL = 12 * time.Hour
	repoCacheTTL    = 24 * time.Hour
	requestTimeout  = 15 * time.Second
)

// ReleaseInfo is the resolved latest release of one repository.
type ReleaseInfo struct {
	Version     string `json:"version"`
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	Changelog   string `json:"changelog"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
}

// RepoInfo is general repository metadata, used by the dashboard.
type RepoInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"open_issues"`
	HTMLURL     string `json:"html_url"`
	Homepage    string `json:"homepage"`
	UpdatedAt   string `json:"updated_at"`
}

// Client talks to the GitHub REST API. All methods are safe for concurrent
// use; cache population is last-write-wins.
type Client struct {
	http    *http.Client
	cache   *cache.Cache
	token   string
	apiBase string // https://api.github.com, overridable in tests
	webBase string // https://github.com, overridable in tests
}

func NewClient(token string) *Client {
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		cache:   cache.New(releaseCacheTTL, time.Hour),
		token:   token,
		apiBase: "https://api.github.com",
		webBase: "https://github.com",
	}
}

// HTTPClient exposes the underlying client so asset downloads share the same
// timeout as API calls.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// SetBaseURLsForTesting points the client at stub servers. Tests only.
func (c *Client) SetBaseURLsForTesting(api, web string) {
	c.apiBase = api
	c.webBase = web
}

func (c *Client) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "psman/"+version.CurrentVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

type releaseBody struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
	ZipballURL  string `json:"zipball_url"`
	Assets      []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// LatestRelease resolves the newest release of repo ("owner/name").
//
// The happy path is the cache: within the TTL no network call is made. Errors
// and fallback results are never cached, so a transient upstream failure
// cannot block installs for the cache window.
func (c *Client) LatestRelease(repo string) (*ReleaseInfo, error) {
	key := "release:" + repo
	if cached, found := c.cache.Get(key); found {
		r := cached.(ReleaseInfo)
		return &r, nil
	}

	resp, err := c.get(fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, repo))
	if err != nil {
		return nil, &TransportError{Op: "fetch latest release", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through below
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, repo)
	case http.StatusForbidden:
		// rate limited, scrape the public releases page instead
		return c.latestFromReleasesPage(repo)
	default:
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var data releaseBody
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.TagName == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "invalid release response"}
	}

	release := ReleaseInfo{
		Version:     strings.TrimPrefix(data.TagName, "v"),
		TagName:     data.TagName,
		Name:        data.Name,
		DownloadURL: data.ZipballURL,
		Changelog:   data.Body,
		PublishedAt: data.PublishedAt,
		HTMLURL:     data.HTMLURL,
	}
	if release.Name == "" {
		release.Name = data.TagName
	}
	// prefer an explicitly packaged zip asset over the source zipball
	for _, asset := range data.Assets {
		if strings.HasSuffix(strings.ToLower(asset.Name), ".zip") {
			release.DownloadURL = asset.BrowserDownloadURL
			break
		}
	}

	c.cache.Set(key, release, releaseCacheTTL)
	return &release, nil
}

// Releases lists recent releases, uncached.
func (c *Client) Releases(repo string, perPage int) ([]ReleaseInfo, error) {
	if perPage <= 0 {
		perPage = 10
	}
	resp, err := c.get(fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.apiBase, repo, perPage))
	if err != nil {
		return nil, &TransportError{Op: "list releases", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var bodies []releaseBody
	if err := json.NewDecoder(resp.Body).Decode(&bodies); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "invalid releases response"}
	}
	out := make([]ReleaseInfo, 0, len(bodies))
	for _, data := range bodies {
		out = append(out, ReleaseInfo{
			Version:     strings.TrimPrefix(data.TagName, "v"),
			TagName:     data.TagName,
			Name:        data.Name,
			DownloadURL: data.ZipballURL,
			Changelog:   data.Body,
			PublishedAt: data.PublishedAt,
			HTMLURL:     data.HTMLURL,
		})
	}
	return out, nil
}

// Repo fetches repository metadata with a 24 hour cache.
func (c *Client) Repo(repo string) (*RepoInfo, error) {
	key := "repo:" + repo
	if cached, found := c.cache.Get(key); found {
		r := cached.(RepoInfo)
		return &r, nil
	}

	resp, err := c.get(fmt.Sprintf("%s/repos/%s", c.apiBase, repo))
	if err != nil {
		return nil, &TransportError{Op: "fetch repo info", Err: err}
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, repo)
	default:
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var data struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		StargazersCount int    `json:"stargazers_count"`
		ForksCount      int    `json:"forks_count"`
		OpenIssuesCount int    `json:"open_issues_count"`
		HTMLURL         string `json:"html_url"`
		Homepage        string `json:"homepage"`
		UpdatedAt       string `json:"updated_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "invalid repo response"}
	}

	info := RepoInfo{
		Name:        data.Name,
		Description: data.Description,
		Stars:       data.StargazersCount,
		Forks:       data.ForksCount,
		OpenIssues:  data.OpenIssuesCount,
		HTMLURL:     data.HTMLURL,
		Homepage:    data.Homepage,
		UpdatedAt:   data.UpdatedAt,
	}
	c.cache.Set(key, info, repoCacheTTL)
	return &info, nil
}

// ClearCache drops cached release/repo entries for one repo, or everything
// when repo is empty. Used by the force-check endpoint.
func (c *Client) ClearCache(repo string) {
	if repo == "" {
		c.cache.Flush()
		return
	}
	c.cache.Delete("release:" + repo)
	c.cache.Delete("repo:" + repo)
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1<<20))
	return string(b)
}
