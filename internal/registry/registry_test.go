package registry

import (
	"path/filepath"
	"testing"

	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/dbcore"
	"github.com/psource-dev/psman/internal/host"
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

// fakeHost is a canned-response host for registry tests.
type fakeHost struct {
	plugins     []host.Artifact
	activeTheme string
	multisite   bool
}

func (f *fakeHost) ListInstalled(kind string) ([]host.Artifact, error) {
	if kind == host.KindPlugin {
		return f.plugins, nil
	}
	return nil, nil
}
func (f *fakeHost) Activate(locator string, networkWide bool) error   { return nil }
func (f *fakeHost) Deactivate(locator string, networkWide bool) error { return nil }
func (f *fakeHost) ActiveTheme() (string, error)                      { return f.activeTheme, nil }
func (f *fakeHost) Multisite() bool                                   { return f.multisite }

func validProduct() *models.Product {
	return &models.Product{
		Slug:    "ps-chat",
		Name:    "PS Chat",
		Version: "2.4.1",
		Type:    "plugin",
		Locator: "ps-chat/ps-chat.php",
		Repo:    "psource/ps-chat",
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	setupDB(t)
	r := New(&fakeHost{})

	require.NoError(t, r.Register(validProduct()))

	p, err := r.Get("ps-chat")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "PS Chat", p.Name)
	require.Equal(t, "ps-chat/ps-chat.php", p.Locator)
	require.False(t, p.RegisteredAt.IsZero())

	missing, err := r.Get("nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRegisterValidation(t *testing.T) {
	setupDB(t)
	r := New(&fakeHost{})

	cases := []func(*models.Product){
		func(p *models.Product) { p.Slug = "" },
		func(p *models.Product) { p.Slug = "a/b" },
		func(p *models.Product) { p.Name = "" },
		func(p *models.Product) { p.Version = "" },
		func(p *models.Product) { p.Type = "widget" },
		func(p *models.Product) { p.Locator = "" },
	}
	for _, mutate := range cases {
		p := validProduct()
		mutate(p)
		err := r.Register(p)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
	}
}

func TestRegisterUpsertsBySlug(t *testing.T) {
	setupDB(t)
	r := New(&fakeHost{})

	require.NoError(t, r.Register(validProduct()))
	updated := validProduct()
	updated.Version = "2.5.0"
	require.NoError(t, r.Register(updated))

	all, err := r.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "2.5.0", all["ps-chat"].Version)
}

func TestUnregister(t *testing.T) {
	setupDB(t)
	r := New(&fakeHost{})
	require.NoError(t, r.Register(validProduct()))

	removed, err := r.Unregister("ps-chat")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = r.Unregister("ps-chat")
	require.NoError(t, err)
	require.False(t, removed)

	p, err := r.Get("ps-chat")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestGetByType(t *testing.T) {
	setupDB(t)
	r := New(&fakeHost{})

	require.NoError(t, r.Register(validProduct()))
	theme := &models.Product{
		Slug: "ps-padma", Name: "PS Padma", Version: "3.1.0",
		Type: "theme", Locator: "ps-padma",
	}
	require.NoError(t, r.Register(theme))

	plugins, err := r.GetByType("plugin")
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	themes, err := r.GetByType("theme")
	require.NoError(t, err)
	require.Len(t, themes, 1)
	require.Equal(t, "PS Padma", themes["ps-padma"].Name)
}

func TestActivationRecomputedFromHost(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{}
	r := New(fh)
	require.NoError(t, r.Register(validProduct()))

	all, err := r.GetAll()
	require.NoError(t, err)
	require.False(t, all["ps-chat"].IsActive)

	// the plugin gets activated behind the registry's back
	fh.plugins = []host.Artifact{{Locator: "ps-chat/ps-chat.php", Active: true}}
	r.Invalidate()

	all, err = r.GetAll()
	require.NoError(t, err)
	require.True(t, all["ps-chat"].IsActive, "activation flag must track host state")
}

func TestThemeActivationTracksActiveTheme(t *testing.T) {
	setupDB(t)
	fh := &fakeHost{activeTheme: "ps-padma"}
	r := New(fh)
	theme := &models.Product{
		Slug: "ps-padma", Name: "PS Padma", Version: "3.1.0",
		Type: "theme", Locator: "ps-padma",
	}
	require.NoError(t, r.Register(theme))

	p, err := r.Get("ps-padma")
	require.NoError(t, err)
	require.True(t, p.IsActive)
}
