package installer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/dbcore"
	"github.com/psource-dev/psman/internal/github"
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

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const chatPluginFile = `<?php
/*
Plugin Name: PS Chat
Version: 2.5.0
*/
`

// releaseServer serves both the release metadata and the packaged zip from
// one stub, with the asset URL rooted at the repository path.
func releaseServer(t *testing.T, tag string, archive []byte) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Power-Source/ps-chat/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name":%q,"zipball_url":"%s/Power-Source/ps-chat/zipball/%s",
			"assets":[{"name":"ps-chat.zip","browser_download_url":"%s/Power-Source/ps-chat/releases/download/%s/ps-chat.zip"}]}`,
			tag, srv.URL, tag, srv.URL, tag)
	})
	mux.HandleFunc("/Power-Source/ps-chat/releases/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	return srv
}

func newTestInstaller(t *testing.T, srv *httptest.Server) (*Installer, string) {
	t.Helper()
	gh := github.NewClient("")
	gh.SetBaseURLsForTesting(srv.URL, srv.URL)
	root := t.TempDir()
	plugins := filepath.Join(root, "plugins")
	themes := filepath.Join(root, "themes")
	reg := registry.New(nil)
	return New(gh, reg, plugins, themes), plugins
}

func TestInstallSuccess(t *testing.T) {
	setupDB(t)
	archive := zipBytes(t, map[string]string{
		"ps-chat/ps-chat.php":   chatPluginFile,
		"ps-chat/inc/admin.php": "<?php",
	})
	srv := releaseServer(t, "v2.5.0", archive)
	defer srv.Close()

	inst, pluginsRoot := newTestInstaller(t, srv)

	var stages []Stage
	p, err := inst.Install("ps-chat", func(stage Stage, detail string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	require.Equal(t, "2.5.0", p.Version)
	require.Equal(t, "ps-chat/ps-chat.php", p.Locator)
	require.True(t, p.Discovered)

	_, err = os.Stat(filepath.Join(pluginsRoot, "ps-chat", "inc", "admin.php"))
	require.NoError(t, err, "payload must land in the plugins directory")

	require.Equal(t, []Stage{StageResolving, StageDownloading, StageExtracting, StageRelocating, StageDone}, stages)
}

func TestInstallReplacesExistingCopy(t *testing.T) {
	setupDB(t)
	archive := zipBytes(t, map[string]string{"ps-chat/ps-chat.php": chatPluginFile})
	srv := releaseServer(t, "v2.5.0", archive)
	defer srv.Close()

	inst, pluginsRoot := newTestInstaller(t, srv)

	old := filepath.Join(pluginsRoot, "ps-chat")
	require.NoError(t, os.MkdirAll(old, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(old, "stale.php"), []byte("<?php"), 0644))

	_, err := inst.Install("ps-chat", nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(old, "stale.php"))
	require.True(t, os.IsNotExist(err), "previous copy must be fully replaced")
	_, err = os.Stat(filepath.Join(old, "ps-chat.php"))
	require.NoError(t, err)

	// no leftover backup directories
	entries, err := os.ReadDir(pluginsRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestInstallRejectsUnknownSlug(t *testing.T) {
	setupDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call may happen for an unknown slug")
	}))
	defer srv.Close()

	inst, _ := newTestInstaller(t, srv)
	_, err := inst.Install("not-in-catalog", nil)
	require.Error(t, err)
}

func TestVerifyRequestRejectsMismatches(t *testing.T) {
	require.Error(t, VerifyRequest("not-in-catalog", "", ""))
	require.Error(t, VerifyRequest("ps-chat", "evil/widget", ""), "repo must match the catalog entry")
	require.Error(t, VerifyRequest("ps-chat", "", "theme"), "type must match the catalog entry")

	require.NoError(t, VerifyRequest("ps-chat", "", ""))
	require.NoError(t, VerifyRequest("ps-chat", "Power-Source/ps-chat", "plugin"))
}

func TestInstallRejectsForeignDownloadURL(t *testing.T) {
	setupDB(t)
	var downloads atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/repos/Power-Source/ps-chat/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name":"v9.9.9","zipball_url":"%s/attacker/elsewhere/zipball/v9.9.9","assets":[]}`, srv.URL)
	})
	mux.HandleFunc("/attacker/", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	inst, _ := newTestInstaller(t, srv)
	_, err := inst.Install("ps-chat", nil)
	require.Error(t, err)
	require.Equal(t, int32(0), downloads.Load(), "foreign URLs must never be fetched")
}

func TestInstallFailsWhenReleaseHasNoArtifact(t *testing.T) {
	setupDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v2.5.0","assets":[]}`)
	}))
	defer srv.Close()

	inst, _ := newTestInstaller(t, srv)
	_, err := inst.Install("ps-chat", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no downloadable artifact")
}

func TestInstallRejectsArchiveWithoutPlugin(t *testing.T) {
	setupDB(t)
	archive := zipBytes(t, map[string]string{"ps-chat/readme.txt": "no php here"})
	srv := releaseServer(t, "v2.5.0", archive)
	defer srv.Close()

	inst, pluginsRoot := newTestInstaller(t, srv)
	_, err := inst.Install("ps-chat", nil)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(pluginsRoot, "ps-chat"))
	require.True(t, os.IsNotExist(statErr), "invalid payloads must not be installed")
}

func TestUpdateOnlyWhenNewer(t *testing.T) {
	setupDB(t)
	archive := zipBytes(t, map[string]string{"ps-chat/ps-chat.php": chatPluginFile})
	srv := releaseServer(t, "v2.5.0", archive)
	defer srv.Close()

	inst, _ := newTestInstaller(t, srv)

	// already at the released version
	require.NoError(t, inst.reg.Register(&models.Product{
		Slug: "ps-chat", Name: "PS Chat", Version: "2.5.0",
		Type: "plugin", Locator: "ps-chat/ps-chat.php", Repo: "Power-Source/ps-chat",
	}))
	p, err := inst.Update("ps-chat", nil)
	require.NoError(t, err)
	require.Nil(t, p, "no install when already current")

	// behind the released version
	require.NoError(t, inst.reg.Register(&models.Product{
		Slug: "ps-chat", Name: "PS Chat", Version: "2.4.0",
		Type: "plugin", Locator: "ps-chat/ps-chat.php", Repo: "Power-Source/ps-chat",
	}))
	p, err = inst.Update("ps-chat", nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "2.5.0", p.Version)
}

func TestTryLockBlocksSecondInstall(t *testing.T) {
	require.True(t, TryLock("lock-test"))
	require.False(t, TryLock("lock-test"))
	Unlock("lock-test")
	require.True(t, TryLock("lock-test"))
	Unlock("lock-test")
}
