package models

import "time"

// Product is one managed plugin or theme record, keyed by its slug.
//
// IsActive is a snapshot, not ground truth: the registry recomputes it from
// host state on read.
type Product struct {
	Slug         string    `json:"slug" gorm:"primaryKey;type:varchar(191);not null"`
	Name         string    `json:"name" gorm:"type:varchar(191);not null"`
	Version      string    `json:"version" gorm:"type:varchar(64);not null"`
	Type         string    `json:"type" gorm:"type:varchar(16);not null"` // plugin, theme
	Locator      string    `json:"file" gorm:"type:varchar(255);not null"`
	Basename     string    `json:"basename" gorm:"type:varchar(255)"`
	Repo         string    `json:"github_repo" gorm:"type:varchar(191)"`
	Description  string    `json:"description" gorm:"type:text"`
	Author       string    `json:"author" gorm:"type:varchar(191);default:'PSource'"`
	AuthorURL    string    `json:"author_url" gorm:"type:varchar(255)"`
	DocsURL      string    `json:"docs_url" gorm:"type:varchar(255)"`
	SupportURL   string    `json:"support_url" gorm:"type:varchar(255)"`
	ChangelogURL string    `json:"changelog_url" gorm:"type:varchar(255)"`
	Icon         string    `json:"icon" gorm:"type:varchar(64)"`
	Category     string    `json:"category" gorm:"type:varchar(64);default:'general'"`
	IsActive     bool      `json:"is_active" gorm:"default:false"`
	NetworkOnly  bool      `json:"network_only" gorm:"default:false"`
	NetworkMode  string    `json:"network_mode" gorm:"type:varchar(32);default:'none'"` // none, flexible, multisite-required, wordpress-network
	Discovered   bool      `json:"discovered" gorm:"default:false"`
	RegisteredAt time.Time `json:"registered_at"`
}
