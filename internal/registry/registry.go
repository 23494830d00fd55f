package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/gookit/event"
	cache "github.com/patrickmn/go-cache"
	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/database/products"
	"github.com/psource-dev/psman/internal/eventType"
	"github.com/psource-dev/psman/internal/host"
)

const (
	cacheKeyAll    = "products"
	cacheKeyStatus = "status-fresh"

	productTTL = 12 * time.Hour
	statusTTL  = 60 * time.Second
)

// Registry is the catalog of managed products. Records are persisted in the
// database; activation flags are recomputed from the host at most once per
// minute, so reads stay cheap under polling.
type Registry struct {
	host  host.Host
	cache *cache.Cache
}

func New(h host.Host) *Registry {
	return &Registry{
		host:  h,
		cache: cache.New(productTTL, 10*time.Minute),
	}
}

// ValidationError reports a rejected registration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product %s: %s", e.Field, e.Reason)
}

func validate(p *models.Product) error {
	if strings.TrimSpace(p.Slug) == "" {
		return &ValidationError{Field: "slug", Reason: "must not be empty"}
	}
	if strings.ContainsAny(p.Slug, "/\\ ") {
		return &ValidationError{Field: "slug", Reason: "must not contain separators or spaces"}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Version) == "" {
		return &ValidationError{Field: "version", Reason: "must not be empty"}
	}
	if p.Type != host.KindPlugin && p.Type != host.KindTheme {
		return &ValidationError{Field: "type", Reason: "must be plugin or theme"}
	}
	if strings.TrimSpace(p.Locator) == "" {
		return &ValidationError{Field: "file", Reason: "must not be empty"}
	}
	return nil
}

// Register validates and upserts one product. The activation flag is computed
// from the host before the write, so a freshly registered record already
// reflects reality.
func (r *Registry) Register(p *models.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now()
	}
	if p.Basename == "" {
		p.Basename = p.Locator
	}
	active, err := r.isActive(p)
	if err == nil {
		p.IsActive = active
	}
	if err := products.Save(p); err != nil {
		return err
	}
	r.invalidate()
	event.Async(eventType.ProductRegistered, event.M{"slug": p.Slug, "type": p.Type})
	return nil
}

// Unregister removes the record for slug. Returns false when nothing was
// registered under that slug.
func (r *Registry) Unregister(slug string) (bool, error) {
	removed, err := products.Delete(slug)
	if err != nil {
		return false, err
	}
	if removed {
		r.invalidate()
		event.Async(eventType.ProductUnregistered, event.M{"slug": slug})
	}
	return removed, nil
}

// Get returns one registered product, or (nil, nil) when absent.
func (r *Registry) Get(slug string) (*models.Product, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	p, ok := all[slug]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetAll returns every registered product keyed by slug.
func (r *Registry) GetAll() (map[string]models.Product, error) {
	if v, ok := r.cache.Get(cacheKeyAll); ok {
		if _, fresh := r.cache.Get(cacheKeyStatus); fresh {
			return v.(map[string]models.Product), nil
		}
	}
	all, err := products.All()
	if err != nil {
		return nil, err
	}
	r.refreshActive(all)
	r.cache.Set(cacheKeyAll, all, productTTL)
	r.cache.Set(cacheKeyStatus, true, statusTTL)
	return all, nil
}

// GetByType returns registered products of one type keyed by slug.
func (r *Registry) GetByType(typ string) (map[string]models.Product, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Product)
	for slug, p := range all {
		if p.Type == typ {
			out[slug] = p
		}
	}
	return out, nil
}

// Invalidate drops the read caches. Mutations done behind the registry's back
// (scans, installs) call this to make the next read hit the database.
func (r *Registry) Invalidate() {
	r.invalidate()
}

func (r *Registry) invalidate() {
	r.cache.Delete(cacheKeyAll)
	r.cache.Delete(cacheKeyStatus)
}

// refreshActive recomputes activation flags from host state and persists the
// ones that changed. Host errors leave the stored snapshot as-is.
func (r *Registry) refreshActive(all map[string]models.Product) {
	if r.host == nil {
		return
	}
	activeByLocator := make(map[string]bool)
	plugins, pluginErr := r.host.ListInstalled(host.KindPlugin)
	for _, art := range plugins {
		activeByLocator[art.Locator] = art.Active
	}
	activeTheme, themeErr := r.host.ActiveTheme()

	for slug, p := range all {
		var active bool
		switch p.Type {
		case host.KindTheme:
			if themeErr != nil {
				continue
			}
			active = activeTheme == p.Slug
		default:
			if pluginErr != nil {
				continue
			}
			active = activeByLocator[p.Locator]
		}
		if active != p.IsActive {
			p.IsActive = active
			all[slug] = p
			_ = products.UpdateActive(slug, active)
		}
	}
}

func (r *Registry) isActive(p *models.Product) (bool, error) {
	if r.host == nil {
		return p.IsActive, nil
	}
	switch p.Type {
	case host.KindTheme:
		active, err := r.host.ActiveTheme()
		if err != nil {
			return false, err
		}
		return active == p.Slug, nil
	default:
		installed, err := r.host.ListInstalled(host.KindPlugin)
		if err != nil {
			return false, err
		}
		for _, art := range installed {
			if art.Locator == p.Locator {
				return art.Active, nil
			}
		}
		return false, nil
	}
}
