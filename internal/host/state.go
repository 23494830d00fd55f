package host

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// activationState is persisted as .psman-state.json at the content root. It is
// the ground truth for which artifacts are active when no CMS is attached.
type activationState struct {
	ActivePlugins        []string `json:"active_plugins"`
	NetworkActivePlugins []string `json:"network_active_plugins"`
	ActiveTheme          string   `json:"active_theme"`
}

func loadState(path string) (*activationState, error) {
	st := &activationState{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// saveState writes to a sibling temp file and renames it into place, so a
// crash mid-write never leaves a truncated state file behind.
func saveState(path string, st *activationState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".psman-state-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func (st *activationState) hasPlugin(locator string) bool {
	for _, l := range st.ActivePlugins {
		if l == locator {
			return true
		}
	}
	return false
}

func (st *activationState) hasNetworkPlugin(locator string) bool {
	for _, l := range st.NetworkActivePlugins {
		if l == locator {
			return true
		}
	}
	return false
}

func (st *activationState) addPlugin(locator string, networkWide bool) {
	if networkWide {
		if !st.hasNetworkPlugin(locator) {
			st.NetworkActivePlugins = append(st.NetworkActivePlugins, locator)
		}
		return
	}
	if !st.hasPlugin(locator) {
		st.ActivePlugins = append(st.ActivePlugins, locator)
	}
}

func (st *activationState) removePlugin(locator string, networkWide bool) {
	if networkWide {
		st.NetworkActivePlugins = remove(st.NetworkActivePlugins, locator)
		return
	}
	st.ActivePlugins = remove(st.ActivePlugins, locator)
}

func remove(list []string, item string) []string {
	out := list[:0]
	for _, l := range list {
		if l != item {
			out = append(out, l)
		}
	}
	return out
}
