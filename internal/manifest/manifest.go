// Package manifest holds the static, trusted catalog of official PSource
// products. Only slugs listed here are ever surfaced as manageable products;
// the manifest is the authorization boundary for the whole install pipeline.
package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed manifest.json
var manifestJSON []byte

//go:embed categories.json
var categoriesJSON []byte

const (
	TypePlugin = "plugin"
	TypeTheme  = "theme"
)

// Entry is one catalog product. Immutable after load.
type Entry struct {
	Slug           string            `json:"-"`
	Type           string            `json:"type"`
	Name           string            `json:"name"`
	Repo           string            `json:"repo"` // owner/name
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Icon           string            `json:"icon"`
	Featured       bool              `json:"featured"`
	Badge          string            `json:"badge"`
	CompatibleWith map[string]string `json:"compatible_with"` // slug -> human description, informational only
}

type categoryMap struct {
	Plugins map[string]string `json:"plugins"`
	Themes  map[string]string `json:"themes"`
}

var (
	entries    map[string]Entry
	categories categoryMap
)

func init() {
	if err := load(); err != nil {
		panic(fmt.Sprintf("manifest: %v", err))
	}
}

func load() error {
	entries = make(map[string]Entry)
	if err := json.Unmarshal(manifestJSON, &entries); err != nil {
		return fmt.Errorf("parse manifest.json: %w", err)
	}
	for slug, e := range entries {
		if e.Type != TypePlugin && e.Type != TypeTheme {
			return fmt.Errorf("entry %q has invalid type %q", slug, e.Type)
		}
		if e.Name == "" || e.Repo == "" {
			return fmt.Errorf("entry %q is missing name or repo", slug)
		}
		e.Slug = slug
		if e.Category == "" {
			e.Category = "general"
		}
		entries[slug] = e
	}
	if err := json.Unmarshal(categoriesJSON, &categories); err != nil {
		return fmt.Errorf("parse categories.json: %w", err)
	}
	return nil
}

// Get returns the catalog entry for slug.
func Get(slug string) (Entry, bool) {
	e, ok := entries[slug]
	return e, ok
}

// GetAll returns a copy of the full catalog keyed by slug.
func GetAll() map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out
}

// Categories returns the display names of categories for one product type.
func Categories(typ string) map[string]string {
	switch typ {
	case TypeTheme:
		return categories.Themes
	default:
		return categories.Plugins
	}
}

// Compat describes one informational compatibility relation. Never an install
// dependency.
type Compat struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompatiblePlugins lists the products slug declares itself compatible with.
// Relations pointing at slugs missing from the catalog are dropped.
func CompatiblePlugins(slug string) []Compat {
	e, ok := entries[slug]
	if !ok {
		return nil
	}
	var out []Compat
	for target, desc := range e.CompatibleWith {
		t, ok := entries[target]
		if !ok {
			continue
		}
		out = append(out, Compat{Slug: target, Name: t.Name, Description: desc})
	}
	return out
}

// UsedBy is the reverse lookup: products that declare compatibility with slug.
func UsedBy(slug string) []Compat {
	var out []Compat
	for other, e := range entries {
		if other == slug {
			continue
		}
		if desc, ok := e.CompatibleWith[slug]; ok {
			out = append(out, Compat{Slug: other, Name: e.Name, Description: desc})
		}
	}
	return out
}
