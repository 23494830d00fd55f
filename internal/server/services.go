package server

import (
	"github.com/psource-dev/psman/internal/conf"
	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/registry"
	"github.com/psource-dev/psman/internal/scanner"
	"github.com/psource-dev/psman/internal/updates"
)

// Services bundles the domain singletons. Route handlers receive them through
// the ServerInitializeStart event payload, keyed per service.
type Services struct {
	Host      host.Host
	GitHub    *github.Client
	Registry  *registry.Registry
	Scanner   *scanner.Scanner
	Installer *installer.Installer
	Updates   *updates.Checker
}

func newServices(cfg *conf.Config) *Services {
	h := host.NewFSHost(cfg.PluginsRoot(), cfg.ThemesRoot(), cfg.Content.Root, cfg.Content.Multisite)
	gh := github.NewClient(cfg.GitHub.Token)
	reg := registry.New(h)
	return &Services{
		Host:      h,
		GitHub:    gh,
		Registry:  reg,
		Scanner:   scanner.New(h, reg),
		Installer: installer.New(gh, reg, cfg.PluginsRoot(), cfg.ThemesRoot()),
		Updates:   updates.New(gh, reg),
	}
}
