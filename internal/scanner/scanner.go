// Package scanner reconciles what is actually installed on the host with the
// product registry. Only artifacts listed in the trusted manifest are picked
// up; anything else on disk is ignored.
package scanner

import (
	"log/slog"
	"time"

	"github.com/gookit/event"
	cache "github.com/patrickmn/go-cache"
	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/eventType"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/manifest"
	"github.com/psource-dev/psman/internal/registry"
)

const (
	cacheKeyDiscovered = "discovered-products"
	cacheKeyLastScan   = "last-scan-time"

	discoveredTTL = 7 * 24 * time.Hour
)

// Result summarizes one reconciliation pass.
type Result struct {
	Found   []string  `json:"found"`
	Skipped []string  `json:"skipped"`
	Removed []string  `json:"removed"`
	At      time.Time `json:"at"`
}

type Scanner struct {
	host  host.Host
	reg   *registry.Registry
	cache *cache.Cache
}

func New(h host.Host, reg *registry.Registry) *Scanner {
	return &Scanner{
		host:  h,
		reg:   reg,
		cache: cache.New(discoveredTTL, time.Hour),
	}
}

// ScanAll walks the host's installed plugins and themes and merges every
// manifest-listed artifact into the registry. Records a user registered by
// hand are left alone; slugs that are mid-install are skipped and picked up
// on the next pass.
func (s *Scanner) ScanAll() (*Result, error) {
	res := &Result{At: time.Now()}

	existing, err := s.reg.GetAll()
	if err != nil {
		return nil, err
	}

	for _, kind := range []string{host.KindPlugin, host.KindTheme} {
		installed, err := s.host.ListInstalled(kind)
		if err != nil {
			return nil, err
		}
		for _, art := range installed {
			entry, ok := manifest.Get(art.Slug)
			if !ok {
				continue
			}
			if entry.Type != kind {
				// Something on disk is shadowing a catalog slug with the
				// wrong artifact type. Never trust it.
				slog.Warn("scan: type mismatch, ignoring artifact",
					slog.String("slug", art.Slug),
					slog.String("declared", entry.Type),
					slog.String("found", kind))
				res.Skipped = append(res.Skipped, art.Slug)
				continue
			}
			if prev, ok := existing[art.Slug]; ok && !prev.Discovered {
				res.Skipped = append(res.Skipped, art.Slug)
				continue
			}
			if !installer.TryLock(art.Slug) {
				res.Skipped = append(res.Skipped, art.Slug)
				continue
			}
			err := s.reg.Register(s.toProduct(entry, art))
			installer.Unlock(art.Slug)
			if err != nil {
				slog.Warn("scan: register failed", slog.String("slug", art.Slug), slog.Any("error", err))
				res.Skipped = append(res.Skipped, art.Slug)
				continue
			}
			res.Found = append(res.Found, art.Slug)
		}
	}

	removed, err := s.cleanupOrphans(res.Found)
	if err != nil {
		slog.Warn("scan: orphan cleanup failed", slog.Any("error", err))
	}
	res.Removed = removed

	s.cache.Set(cacheKeyDiscovered, res.Found, discoveredTTL)
	s.cache.Set(cacheKeyLastScan, res.At, discoveredTTL)
	event.Async(eventType.ScanCompleted, event.M{
		"found":   len(res.Found),
		"skipped": len(res.Skipped),
		"removed": len(res.Removed),
	})
	return res, nil
}

func (s *Scanner) toProduct(entry manifest.Entry, art host.Artifact) *models.Product {
	return &models.Product{
		Slug:        art.Slug,
		Name:        entry.Name,
		Version:     art.Version,
		Type:        entry.Type,
		Locator:     art.Locator,
		Basename:    art.Locator,
		Repo:        entry.Repo,
		Description: entry.Description,
		Icon:        entry.Icon,
		Category:    entry.Category,
		IsActive:    art.Active,
		NetworkOnly: art.NetworkOnly,
		NetworkMode: art.NetworkMode,
		Discovered:  true,
	}
}

// cleanupOrphans drops discovered records whose artifact is gone from disk and
// which are not active. Self-registered records are never touched, and active
// records survive so a broken install stays visible.
func (s *Scanner) cleanupOrphans(found []string) ([]string, error) {
	onDisk := make(map[string]bool, len(found))
	for _, slug := range found {
		onDisk[slug] = true
	}
	all, err := s.reg.GetAll()
	if err != nil {
		return nil, err
	}
	var removed []string
	for slug, p := range all {
		if !p.Discovered || p.IsActive || onDisk[slug] {
			continue
		}
		if _, err := s.reg.Unregister(slug); err != nil {
			slog.Warn("scan: unregister orphan failed", slog.String("slug", slug), slog.Any("error", err))
			continue
		}
		removed = append(removed, slug)
	}
	return removed, nil
}

// Discovered returns the slugs found by the most recent scan and when it ran.
// The second return is zero when no scan ran within the retention window.
func (s *Scanner) Discovered() ([]string, time.Time) {
	var slugs []string
	var at time.Time
	if v, ok := s.cache.Get(cacheKeyDiscovered); ok {
		slugs = v.([]string)
	}
	if v, ok := s.cache.Get(cacheKeyLastScan); ok {
		at = v.(time.Time)
	}
	return slugs, at
}
