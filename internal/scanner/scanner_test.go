package scanner

import (
	"path/filepath"
	"testing"

	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/dbcore"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/registry"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.AuditLog{}))
	dbcore.SetDBInstanceForTesting(db)
}

type fakeHost struct {
	plugins []host.Artifact
	themes  []host.Artifact
}

func (f *fakeHost) ListInstalled(kind string) ([]host.Artifact, error) {
	if kind == host.KindPlugin {
		return f.plugins, nil
	}
	return f.themes, nil
}
func (f *fakeHost) Activate(locator string, networkWide bool) error   { return nil }
func (f *fakeHost) Deactivate(locator string, networkWide bool) error { return nil }
func (f *fakeHost) ActiveTheme() (string, error)                      { return "", nil }
func (f *fakeHost) Multisite() bool                                   { return false }

func chatArtifact() host.Artifact {
	return host.Artifact{
		Locator: "ps-chat/ps-chat.php",
		Slug:    "ps-chat",
		Name:    "PS Chat",
		Version: "2.4.1",
	}
}

func TestScanPicksUpManifestProducts(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{
		plugins: []host.Artifact{
			chatArtifact(),
			{Locator: "random/random.php", Slug: "random", Name: "Random", Version: "0.1"},
		},
		themes: []host.Artifact{
			{Locator: "ps-padma", Slug: "ps-padma", Name: "PS Padma", Version: "3.1.0"},
		},
	}
	reg := registry.New(fh)
	s := New(fh, reg)

	res, err := s.ScanAll()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ps-chat", "ps-padma"}, res.Found)

	all, err := reg.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2, "artifacts outside the manifest are never registered")
	require.True(t, all["ps-chat"].Discovered)
	require.Equal(t, "Power-Source/ps-chat", all["ps-chat"].Repo, "repo comes from the manifest, not the artifact")
}

func TestScanIsIdempotent(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{plugins: []host.Artifact{chatArtifact()}}
	reg := registry.New(fh)
	s := New(fh, reg)

	_, err := s.ScanAll()
	require.NoError(t, err)
	_, err = s.ScanAll()
	require.NoError(t, err)

	all, err := reg.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestScanRejectsTypeMismatch(t *testing.T) {
	setupDB(t)
	// something on disk is a theme directory named after a catalog plugin
	fh := &fakeHost{
		themes: []host.Artifact{{Locator: "ps-chat", Slug: "ps-chat", Name: "Fake", Version: "9.9"}},
	}
	reg := registry.New(fh)
	s := New(fh, reg)

	res, err := s.ScanAll()
	require.NoError(t, err)
	require.Empty(t, res.Found)
	require.Contains(t, res.Skipped, "ps-chat")

	all, err := reg.GetAll()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestScanNeverOverwritesSelfRegistered(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{plugins: []host.Artifact{chatArtifact()}}
	reg := registry.New(fh)

	manual := &models.Product{
		Slug: "ps-chat", Name: "My Chat Fork", Version: "0.0.1",
		Type: "plugin", Locator: "ps-chat/custom.php", Discovered: false,
	}
	require.NoError(t, reg.Register(manual))

	s := New(fh, reg)
	res, err := s.ScanAll()
	require.NoError(t, err)
	require.Contains(t, res.Skipped, "ps-chat")

	p, err := reg.Get("ps-chat")
	require.NoError(t, err)
	require.Equal(t, "My Chat Fork", p.Name)
	require.Equal(t, "ps-chat/custom.php", p.Locator)
}

func TestScanSkipsLockedSlugs(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{plugins: []host.Artifact{chatArtifact()}}
	reg := registry.New(fh)
	s := New(fh, reg)

	require.True(t, installer.TryLock("ps-chat"))
	defer installer.Unlock("ps-chat")

	res, err := s.ScanAll()
	require.NoError(t, err)
	require.Empty(t, res.Found)
	require.Contains(t, res.Skipped, "ps-chat")
}

func TestScanRemovesInactiveOrphans(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{plugins: []host.Artifact{chatArtifact()}}
	reg := registry.New(fh)
	s := New(fh, reg)

	_, err := s.ScanAll()
	require.NoError(t, err)

	// the plugin directory disappears
	fh.plugins = nil
	reg.Invalidate()
	res, err := s.ScanAll()
	require.NoError(t, err)
	require.Contains(t, res.Removed, "ps-chat")

	p, err := reg.Get("ps-chat")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestDiscoveredReflectsLastScan(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{plugins: []host.Artifact{chatArtifact()}}
	reg := registry.New(fh)
	s := New(fh, reg)

	slugs, at := s.Discovered()
	require.Empty(t, slugs)
	require.True(t, at.IsZero())

	_, err := s.ScanAll()
	require.NoError(t, err)

	slugs, at = s.Discovered()
	require.Equal(t, []string{"ps-chat"}, slugs)
	require.False(t, at.IsZero())
}
