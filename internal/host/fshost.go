package host

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSHost discovers installed artifacts by reading plugin and theme headers
// straight off the filesystem, and tracks activation in a local state file.
type FSHost struct {
	pluginsRoot string
	themesRoot  string
	statePath   string
	multisite   bool

	mu sync.Mutex
}

func NewFSHost(pluginsRoot, themesRoot, contentRoot string, multisite bool) *FSHost {
	return &FSHost{
		pluginsRoot: pluginsRoot,
		themesRoot:  themesRoot,
		statePath:   filepath.Join(contentRoot, ".psman-state.json"),
		multisite:   multisite,
	}
}

func (h *FSHost) Multisite() bool {
	return h.multisite
}

func (h *FSHost) ListInstalled(kind string) ([]Artifact, error) {
	switch kind {
	case KindPlugin:
		return h.listPlugins()
	case KindTheme:
		return h.listThemes()
	default:
		return nil, errors.New("unknown artifact kind: " + string(kind))
	}
}

func (h *FSHost) listPlugins() ([]Artifact, error) {
	st, err := loadState(h.statePath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(h.pluginsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			art, ok := h.pluginFromDir(entry.Name(), st)
			if ok {
				out = append(out, art)
			}
			continue
		}
		// Single-file plugins live directly under the plugins root.
		if strings.HasSuffix(entry.Name(), ".php") {
			art, ok := h.pluginFromFile(entry.Name(), entry.Name(), st)
			if ok {
				out = append(out, art)
			}
		}
	}
	return out, nil
}

// pluginFromDir finds the first .php file in the directory that carries a
// "Plugin Name" header. Subdirectories are not searched; the CMS only honors
// headers one level deep.
func (h *FSHost) pluginFromDir(dir string, st *activationState) (Artifact, bool) {
	files, err := os.ReadDir(filepath.Join(h.pluginsRoot, dir))
	if err != nil {
		return Artifact{}, false
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".php") {
			continue
		}
		locator := dir + "/" + f.Name()
		if art, ok := h.pluginFromFile(filepath.Join(dir, f.Name()), locator, st); ok {
			return art, true
		}
	}
	return Artifact{}, false
}

func (h *FSHost) pluginFromFile(relPath, locator string, st *activationState) (Artifact, bool) {
	headers, err := ReadHeaders(filepath.Join(h.pluginsRoot, relPath))
	if err != nil {
		return Artifact{}, false
	}
	name, ok := headers["Plugin Name"]
	if !ok || name == "" {
		return Artifact{}, false
	}
	networkOnly, mode := networkMode(headers, h.multisite)
	slug := locator
	if i := strings.Index(locator, "/"); i > 0 {
		slug = locator[:i]
	} else {
		slug = strings.TrimSuffix(locator, ".php")
	}
	return Artifact{
		Locator:       locator,
		Slug:          slug,
		Name:          name,
		Version:       headers["Version"],
		Active:        st.hasPlugin(locator) || st.hasNetworkPlugin(locator),
		NetworkActive: st.hasNetworkPlugin(locator),
		NetworkOnly:   networkOnly,
		NetworkMode:   mode,
	}, true
}

func (h *FSHost) listThemes() ([]Artifact, error) {
	st, err := loadState(h.statePath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(h.themesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Artifact
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		headers, err := ReadHeaders(filepath.Join(h.themesRoot, entry.Name(), "style.css"))
		if err != nil {
			continue
		}
		name, ok := headers["Theme Name"]
		if !ok || name == "" {
			continue
		}
		out = append(out, Artifact{
			Locator:     entry.Name(),
			Slug:        entry.Name(),
			Name:        name,
			Version:     headers["Version"],
			Active:      st.ActiveTheme == entry.Name(),
			NetworkMode: NetworkModeNone,
		})
	}
	return out, nil
}

func (h *FSHost) ActiveTheme() (string, error) {
	st, err := loadState(h.statePath)
	if err != nil {
		return "", err
	}
	return st.ActiveTheme, nil
}

// Activate marks an artifact active. Locators ending in .php are plugins,
// everything else is treated as a theme directory name.
func (h *FSHost) Activate(locator string, networkWide bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := loadState(h.statePath)
	if err != nil {
		return err
	}
	if strings.HasSuffix(locator, ".php") {
		if networkWide && !h.multisite {
			return errors.New("network activation requires a multisite host")
		}
		st.addPlugin(locator, networkWide)
	} else {
		st.ActiveTheme = locator
	}
	return saveState(h.statePath, st)
}

func (h *FSHost) Deactivate(locator string, networkWide bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := loadState(h.statePath)
	if err != nil {
		return err
	}
	if strings.HasSuffix(locator, ".php") {
		st.removePlugin(locator, networkWide)
	} else if st.ActiveTheme == locator {
		st.ActiveTheme = ""
	}
	return saveState(h.statePath, st)
}
