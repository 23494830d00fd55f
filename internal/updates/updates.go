// Package updates sweeps the registry against upstream releases.
package updates

import (
	"log/slog"
	"time"

	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/registry"
)

// Info describes one product with a newer upstream release.
type Info struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Installed   string `json:"installed_version"`
	Available   string `json:"available_version"`
	DownloadURL string `json:"download_url"`
	Changelog   string `json:"changelog"`
	PublishedAt string `json:"published_at"`
}

// Report is the outcome of one sweep.
type Report struct {
	Updates   []Info    `json:"updates"`
	Checked   int       `json:"checked"`
	Errors    int       `json:"errors"`
	CheckedAt time.Time `json:"checked_at"`
}

type Checker struct {
	gh  *github.Client
	reg *registry.Registry
}

func New(gh *github.Client, reg *registry.Registry) *Checker {
	return &Checker{gh: gh, reg: reg}
}

// Check resolves the latest release for every registered product with a
// repository and reports the ones that are behind. One product failing to
// resolve never aborts the sweep; rate limits and dead repos are per-product
// conditions.
func (c *Checker) Check() (*Report, error) {
	all, err := c.reg.GetAll()
	if err != nil {
		return nil, err
	}

	rep := &Report{CheckedAt: time.Now()}
	for slug, p := range all {
		if p.Repo == "" {
			continue
		}
		rep.Checked++
		release, err := c.gh.LatestRelease(p.Repo)
		if err != nil {
			rep.Errors++
			slog.Warn("update check failed",
				slog.String("slug", slug),
				slog.String("repo", p.Repo),
				slog.Any("error", err))
			continue
		}
		if !github.HasUpdate(p.Version, release.Version) {
			continue
		}
		rep.Updates = append(rep.Updates, Info{
			Slug:        slug,
			Name:        p.Name,
			Type:        p.Type,
			Installed:   p.Version,
			Available:   release.Version,
			DownloadURL: release.DownloadURL,
			Changelog:   release.Changelog,
			PublishedAt: release.PublishedAt,
		})
	}
	return rep, nil
}

// ForceCheck drops every cached release first, so the sweep hits upstream
// even inside the cache window.
func (c *Checker) ForceCheck() (*Report, error) {
	c.gh.ClearCache("")
	return c.Check()
}
