package conf

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gookit/event"
	"github.com/psource-dev/psman/cmd/flags"
	"github.com/psource-dev/psman/internal/eventType"
	"go.uber.org/fx"
)

// FxModule provides the configuration loader and associated startup side-effects.
//
// It loads configuration and also keeps the global variable Conf updated to
// minimize downstream changes.
func FxModule() fx.Option {
	return fx.Options(
		fx.Provide(loadConfig),
		fx.Invoke(registerConfigEvents),
	)
}

func loadConfig() (*Config, error) {
	var cst *Config
	if _, err := os.Stat(flags.ConfigFile); os.IsNotExist(err) {
		t := Default()
		cst = &t

		b, err := json.MarshalIndent(cst, "", "  ")
		if err != nil {
			return nil, err
		}

		if err := os.MkdirAll(filepath.Dir(flags.ConfigFile), os.ModePerm); err != nil {
			return nil, err
		}
		if err := os.WriteFile(flags.ConfigFile, b, 0644); err != nil {
			return nil, err
		}
	} else {
		b, err := os.ReadFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}

		cst = &Config{}
		if err := json.Unmarshal(b, cst); err != nil {
			return nil, err
		}
	}

	if flags.Listen != "" {
		cst.Listen = flags.Listen
	}
	Conf = cst
	return Conf, nil
}

func registerConfigEvents(lc fx.Lifecycle, cfg *Config) {
	// Once the HTTP stack is initialized, broadcast a ConfigUpdated to populate
	// consumers (e.g. CORS).
	lc.Append(fx.Hook{OnStart: func(_ctx context.Context) error {
		event.On(eventType.ServerInitializeDone, event.ListenerFunc(func(e event.Event) error {
			event.Trigger(eventType.ConfigUpdated, event.M{
				"old": Config{},
				"new": *cfg,
			})
			return nil
		}), event.Low)
		return nil
	}})
}
