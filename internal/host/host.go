// Package host abstracts the managed CMS installation: which plugin and theme
// artifacts exist on disk, and which of them are active. One production
// implementation reads the content tree directly; tests supply fakes.
package host

const (
	KindPlugin = "plugin"
	KindTheme  = "theme"
)

// Network activation modes derived from artifact headers.
const (
	NetworkModeNone      = "none"
	NetworkModeFlexible  = "flexible"
	NetworkModeRequired  = "multisite-required"
	NetworkModeWordPress = "wordpress-network"
)

// Artifact is one installed plugin or theme as the host sees it.
type Artifact struct {
	// Locator identifies the artifact to the host: "dir/mainfile.php" for
	// plugins, the directory name for themes.
	Locator       string
	Slug          string
	Name          string
	Version       string
	Active        bool
	NetworkActive bool
	NetworkOnly   bool
	NetworkMode   string
}

// Host is the boundary to the CMS install. Implementations must be safe for
// concurrent readers.
type Host interface {
	// ListInstalled enumerates artifacts of one kind.
	ListInstalled(kind string) ([]Artifact, error)
	// Activate marks an artifact active, network wide when requested.
	Activate(locator string, networkWide bool) error
	// Deactivate clears the active flag.
	Deactivate(locator string, networkWide bool) error
	// ActiveTheme returns the directory name of the active theme, if any.
	ActiveTheme() (string, error)
	// Multisite reports whether the install is multi-tenant.
	Multisite() bool
}
