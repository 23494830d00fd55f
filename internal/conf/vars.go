package conf

var (
	Conf *Config // when mutating directly, trigger eventType.ConfigUpdated yourself or use Override
)

type Config struct {
	Site     Site     `json:"site"`
	Content  Content  `json:"content"`
	GitHub   GitHub   `json:"github"`
	Admin    Admin    `json:"admin"`
	Database Database `json:"database"`
	Listen   string   `json:"listen"`
}

type Site struct {
	Sitename    string `json:"sitename"`
	Description string `json:"description"`
	AllowCors   bool   `json:"allow_cors"`
}

// Content locates the managed CMS content tree. PluginsDir and ThemesDir are
// resolved relative to Root when not absolute.
type Content struct {
	Root       string `json:"root"`
	PluginsDir string `json:"plugins_dir"`
	ThemesDir  string `json:"themes_dir"`
	Multisite  bool   `json:"multisite"`
}

type GitHub struct {
	// Token raises the unauthenticated API rate limit when set.
	Token string `json:"token"`
}

type Admin struct {
	ApiKey string `json:"api_key"`
}

type Database struct {
	DatabaseType string `json:"database_type"` // sqlite, mysql
	DatabaseFile string `json:"database_file"`
	DatabaseHost string `json:"database_host"`
	DatabasePort string `json:"database_port"`
	DatabaseUser string `json:"database_user"`
	DatabasePass string `json:"database_pass"`
	DatabaseName string `json:"database_name"`
}
