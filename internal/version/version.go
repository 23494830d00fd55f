package version

// Set at build time via -ldflags "-X ...".
var (
	CurrentVersion = "dev"
	VersionHash    = "unknown"
)
