// Package installer downloads product releases from GitHub and swaps them
// into the live plugins or themes directory. All trust decisions happen
// before the first byte is fetched: the slug must be in the manifest, and the
// download location must belong to the manifest's repository.
package installer

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/event"
	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/eventType"
	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/manifest"
	"github.com/psource-dev/psman/internal/registry"
)

// Stage names one step of an install, in the order they run.
type Stage string

const (
	StageResolving   Stage = "resolving"
	StageDownloading Stage = "downloading"
	StageExtracting  Stage = "extracting"
	StageRelocating  Stage = "relocating"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Observer receives stage transitions while an install runs. May be nil.
type Observer func(stage Stage, detail string)

type Installer struct {
	gh          *github.Client
	reg         *registry.Registry
	pluginsRoot string
	themesRoot  string
}

func New(gh *github.Client, reg *registry.Registry, pluginsRoot, themesRoot string) *Installer {
	return &Installer{gh: gh, reg: reg, pluginsRoot: pluginsRoot, themesRoot: themesRoot}
}

// VerifyRequest cross-checks caller-supplied repo and type against the
// catalog before anything runs. Empty values are not checked; a mismatch is
// rejected so a request can never redirect an install to a foreign
// repository.
func VerifyRequest(slug, repo, typ string) error {
	entry, ok := manifest.Get(slug)
	if !ok {
		return fmt.Errorf("%q is not a managed product", slug)
	}
	if repo != "" && repo != entry.Repo {
		return fmt.Errorf("repo %q does not match the catalog entry for %q", repo, slug)
	}
	if typ != "" && typ != entry.Type {
		return fmt.Errorf("type %q does not match the catalog entry for %q", typ, slug)
	}
	return nil
}

// Install fetches the latest release of a catalog product and installs it,
// replacing any existing copy. Blocks while another install of the same slug
// is running.
func (in *Installer) Install(slug string, obs Observer) (*models.Product, error) {
	entry, ok := manifest.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%q is not a managed product", slug)
	}

	lockFor(slug).Lock()
	defer Unlock(slug)

	p, err := in.run(entry, obs)
	if err != nil {
		in.notify(obs, StageFailed, err.Error())
		event.Async(eventType.InstallFailed, event.M{"slug": slug, "error": err.Error()})
		return nil, err
	}
	in.notify(obs, StageDone, p.Version)
	event.Async(eventType.InstallComplete, event.M{"slug": slug, "version": p.Version})
	return p, nil
}

// Update installs the latest release only when it is newer than the
// registered version. Returns (nil, nil) when already current.
func (in *Installer) Update(slug string, obs Observer) (*models.Product, error) {
	entry, ok := manifest.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%q is not a managed product", slug)
	}
	current, err := in.reg.Get(slug)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%q is not installed", slug)
	}
	release, err := in.gh.LatestRelease(entry.Repo)
	if err != nil {
		return nil, err
	}
	if !github.HasUpdate(current.Version, release.Version) {
		return nil, nil
	}
	return in.Install(slug, obs)
}

func (in *Installer) run(entry manifest.Entry, obs Observer) (*models.Product, error) {
	event.Async(eventType.InstallStarted, event.M{"slug": entry.Slug})

	in.notify(obs, StageResolving, entry.Repo)
	release, err := in.gh.LatestRelease(entry.Repo)
	if err != nil {
		return nil, err
	}
	if release.DownloadURL == "" {
		return nil, fmt.Errorf("release %s of %s has no downloadable artifact", release.Version, entry.Repo)
	}
	if err := checkDownloadOrigin(entry.Repo, release.DownloadURL); err != nil {
		return nil, err
	}

	in.notify(obs, StageDownloading, release.DownloadURL)
	archive, err := in.download(release.DownloadURL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	in.notify(obs, StageExtracting, "")
	stage, err := os.MkdirTemp("", "psman-extract-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stage)
	if err := extractZip(archive, stage); err != nil {
		return nil, err
	}
	payload, err := payloadDir(stage)
	if err != nil {
		return nil, err
	}

	locator, version, err := inspectPayload(entry, payload)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = release.Version
	}

	in.notify(obs, StageRelocating, "")
	if err := in.relocate(entry, payload); err != nil {
		return nil, err
	}

	p := &models.Product{
		Slug:        entry.Slug,
		Name:        entry.Name,
		Version:     version,
		Type:        entry.Type,
		Locator:     locator,
		Basename:    locator,
		Repo:        entry.Repo,
		Description: entry.Description,
		Icon:        entry.Icon,
		Category:    entry.Category,
		Discovered:  true,
	}
	if err := in.reg.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// checkDownloadOrigin rejects download URLs that do not point at the expected
// repository. A compromised or renamed release must not pull foreign code
// onto the host.
func checkDownloadOrigin(repo, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid download url: %w", err)
	}
	if !strings.HasPrefix(u.Path, "/"+repo+"/") {
		return fmt.Errorf("download url %s does not belong to %s", rawURL, repo)
	}
	return nil
}

func (in *Installer) download(rawURL string) (string, error) {
	client := in.gh.HTTPClient()
	resp, err := client.Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "psman-download-*.zip")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// inspectPayload validates that the extracted tree actually is an artifact of
// the declared type, and reads its locator and version off its headers.
func inspectPayload(entry manifest.Entry, payload string) (locator, version string, err error) {
	if entry.Type == manifest.TypeTheme {
		headers, err := host.ReadHeaders(filepath.Join(payload, "style.css"))
		if err != nil || headers["Theme Name"] == "" {
			return "", "", fmt.Errorf("archive for %s does not contain a theme", entry.Slug)
		}
		return entry.Slug, headers["Version"], nil
	}

	files, err := os.ReadDir(payload)
	if err != nil {
		return "", "", err
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".php") {
			continue
		}
		headers, err := host.ReadHeaders(filepath.Join(payload, f.Name()))
		if err != nil {
			continue
		}
		if headers["Plugin Name"] != "" {
			return entry.Slug + "/" + f.Name(), headers["Version"], nil
		}
	}
	return "", "", fmt.Errorf("archive for %s does not contain a plugin", entry.Slug)
}

// relocate swaps the payload into the live directory. The previous copy is
// moved aside first and restored if the swap fails.
func (in *Installer) relocate(entry manifest.Entry, payload string) error {
	root := in.pluginsRoot
	if entry.Type == manifest.TypeTheme {
		root = in.themesRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	dest := filepath.Join(root, entry.Slug)

	ok, err := containedIn(root, dest)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("destination %s resolves outside %s", dest, root)
	}

	backup := ""
	if _, err := os.Stat(dest); err == nil {
		backup = dest + ".replaced-" + time.Now().Format("20060102150405")
		if err := os.Rename(dest, backup); err != nil {
			return fmt.Errorf("move previous copy aside: %w", err)
		}
	}

	if err := os.Rename(payload, dest); err != nil {
		// Cross-device temp dirs cannot be renamed into place; fall back to a
		// copy.
		if cpErr := copyTree(payload, dest); cpErr != nil {
			if backup != "" {
				if restoreErr := os.Rename(backup, dest); restoreErr != nil {
					slog.Error("restore previous copy failed",
						slog.String("slug", entry.Slug), slog.Any("error", restoreErr))
				}
			}
			return fmt.Errorf("install into %s: %w", dest, cpErr)
		}
	}
	if backup != "" {
		os.RemoveAll(backup)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0200)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

func (in *Installer) notify(obs Observer, stage Stage, detail string) {
	if obs != nil {
		obs(stage, detail)
	}
}
