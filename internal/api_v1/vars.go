package api_v1

import (
	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/registry"
	"github.com/psource-dev/psman/internal/scanner"
	"github.com/psource-dev/psman/internal/updates"
)

// Domain singletons, populated from the ServerInitializeStart payload before
// any route is served.
var (
	hostSvc    host.Host
	ghClient   *github.Client
	reg        *registry.Registry
	scanSvc    *scanner.Scanner
	installSvc *installer.Installer
	updatesSvc *updates.Checker
)
