package conf

import (
	"encoding/json"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/gookit/event"
	"github.com/psource-dev/psman/cmd/flags"
	"github.com/psource-dev/psman/internal/eventType"
)

func Default() Config {
	return Config{
		Site: Site{
			Sitename:    "PSource Manager",
			Description: "Update and install manager for PSource plugins and themes.",
			AllowCors:   false,
		},
		Content: Content{
			Root:       "./wp-content",
			PluginsDir: "plugins",
			ThemesDir:  "themes",
		},
		GitHub: GitHub{},
		Admin:  Admin{},
		Database: Database{
			DatabaseType: "sqlite",
			DatabaseFile: "./data/psman.db",
		},
		Listen: "0.0.0.0:8750",
	}
}

// Override replaces the in-memory config and writes it to the config file.
func Override(cst Config) error {
	b, err := json.MarshalIndent(cst, "", "  ")
	if err != nil {
		return err
	}

	oldConf := *Conf
	Conf = &cst

	err, _ = event.Trigger(eventType.ConfigUpdated, event.M{
		"old": oldConf,
		"new": cst,
	})
	if err != nil {
		// roll the change back
		Conf = &oldConf
		b, _ = json.MarshalIndent(oldConf, "", "  ")
		slog.Error("Configuration update reverted due to error in ConfigUpdated event.", slog.Any("error", err))
	}
	if err := os.WriteFile(flags.ConfigFile, b, 0644); err != nil {
		return err
	}
	return err
}

// PluginsRoot returns the absolute-ish path of the managed plugins directory.
func (c *Config) PluginsRoot() string {
	if filepath.IsAbs(c.Content.PluginsDir) {
		return c.Content.PluginsDir
	}
	return filepath.Join(c.Content.Root, c.Content.PluginsDir)
}

// ThemesRoot returns the absolute-ish path of the managed themes directory.
func (c *Config) ThemesRoot() string {
	if filepath.IsAbs(c.Content.ThemesDir) {
		return c.Content.ThemesDir
	}
	return filepath.Join(c.Content.Root, c.Content.ThemesDir)
}
