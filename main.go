package main

import (
	"log"
	"log/slog"

	"github.com/psource-dev/psman/cmd"
	logutil "github.com/psource-dev/psman/internal/log"
	"github.com/psource-dev/psman/internal/version"
)

func main() {
	if version.VersionHash == "unknown" {
		logutil.SetupGlobalLogger(slog.LevelDebug)
	} else {
		logutil.SetupGlobalLogger(slog.LevelInfo)
	}

	log.Printf("PSource Manager %s (hash: %s)", version.CurrentVersion, version.VersionHash)

	cmd.Execute()
}
