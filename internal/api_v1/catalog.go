package api_v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/manifest"
)

type catalogItem struct {
	manifest.Entry
	Slug       string `json:"slug"`
	Registered bool   `json:"registered"`
	Installed  string `json:"installed_version,omitempty"`
	Active     bool   `json:"active"`
}

// GetCatalog lists every official product, annotated with its local state.
func GetCatalog(c *gin.Context) {
	registered, err := reg.GetAll()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	typ := c.Query("type")
	category := c.Query("category")
	var items []catalogItem
	for slug, entry := range manifest.GetAll() {
		if typ != "" && entry.Type != typ {
			continue
		}
		if category != "" && entry.Category != category {
			continue
		}
		item := catalogItem{Entry: entry, Slug: slug}
		if p, ok := registered[slug]; ok {
			item.Registered = true
			item.Installed = p.Version
			item.Active = p.IsActive
		}
		items = append(items, item)
	}
	resp.RespondSuccess(c, items)
}

// GetCatalogEntry returns one product with its compatibility relations.
func GetCatalogEntry(c *gin.Context) {
	slug := c.Param("slug")
	entry, ok := manifest.Get(slug)
	if !ok {
		resp.RespondError(c, http.StatusNotFound, "Unknown product: "+slug)
		return
	}

	item := catalogItem{Entry: entry, Slug: slug}
	if p, err := reg.Get(slug); err == nil && p != nil {
		item.Registered = true
		item.Installed = p.Version
		item.Active = p.IsActive
	}
	resp.RespondSuccess(c, gin.H{
		"product":         item,
		"compatible_with": manifest.CompatiblePlugins(slug),
		"used_by":         manifest.UsedBy(slug),
	})
}

func GetCategories(c *gin.Context) {
	resp.RespondSuccess(c, gin.H{
		"plugins": manifest.Categories(manifest.TypePlugin),
		"themes":  manifest.Categories(manifest.TypeTheme),
	})
}
