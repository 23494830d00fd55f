package github

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var downloadLinkRe = regexp.MustCompile(`href="([^"]*/releases/download/[^"]*\.zip)"`)

// latestFromReleasesPage is the rate-limit fallback: scan the public releases
// page for the first packaged zip link, else fall back to the default-branch
// source archive. The result carries only a download URL (no tag metadata)
// and is deliberately never cached, since it is derived from volatile markup.
func (c *Client) latestFromReleasesPage(repo string) (*ReleaseInfo, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/%s/releases", c.webBase, repo))
	if err != nil {
		return nil, &TransportError{Op: "fetch releases page", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ErrRateLimited
	}

	body := readBody(resp.Body)
	if m := downloadLinkRe.FindStringSubmatch(body); m != nil {
		url := m[1]
		if strings.HasPrefix(url, "/") {
			url = c.webBase + url
		}
		return &ReleaseInfo{DownloadURL: url}, nil
	}

	// no packaged asset on the page, take the default branch archive
	return &ReleaseInfo{
		DownloadURL: fmt.Sprintf("%s/%s/archive/refs/heads/main.zip", c.webBase, repo),
	}, nil
}
