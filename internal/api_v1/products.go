package api_v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/database/models"
)

// ListProducts returns every registered product, optionally filtered by type.
func ListProducts(c *gin.Context) {
	typ := c.Query("type")
	var (
		all map[string]models.Product
		err error
	)
	if typ != "" {
		all, err = reg.GetByType(typ)
	} else {
		all, err = reg.GetAll()
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, all)
}

func GetProduct(c *gin.Context) {
	p, err := reg.Get(c.Param("slug"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if p == nil {
		resp.RespondError(c, http.StatusNotFound, "Product not registered: "+c.Param("slug"))
		return
	}
	resp.RespondSuccess(c, p)
}

// RegisterProduct registers a product by hand. Self-registered records are
// authoritative: later scans will not overwrite them.
func RegisterProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		resp.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p.Discovered = false
	if err := reg.Register(&p); err != nil {
		respondDomainError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "registered product "+p.Slug, "info")
	resp.RespondSuccessMessage(c, "Product registered.", p)
}

func UnregisterProduct(c *gin.Context) {
	slug := c.Param("slug")
	removed, err := reg.Unregister(slug)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if !removed {
		resp.RespondError(c, http.StatusNotFound, "Product not registered: "+slug)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "unregistered product "+slug, "info")
	resp.RespondSuccessMessage(c, "Product unregistered.", nil)
}

// ActivateProduct flips the artifact active on the host and refreshes the
// stored flag.
func ActivateProduct(c *gin.Context) {
	slug := c.Param("slug")
	p, err := reg.Get(slug)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if p == nil {
		resp.RespondError(c, http.StatusNotFound, "Product not registered: "+slug)
		return
	}

	networkWide := c.Query("network") == "true" || p.NetworkOnly
	if networkWide && !hostSvc.Multisite() {
		resp.RespondError(c, http.StatusBadRequest, "Network activation requires a multisite host.")
		return
	}
	if err := hostSvc.Activate(p.Locator, networkWide); err != nil {
		respondDomainError(c, err)
		return
	}
	reg.Invalidate()
	auditlog.Log(c.ClientIP(), "admin", "activated product "+slug, "info")
	resp.RespondSuccessMessage(c, "Product activated.", nil)
}

func DeactivateProduct(c *gin.Context) {
	slug := c.Param("slug")
	p, err := reg.Get(slug)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if p == nil {
		resp.RespondError(c, http.StatusNotFound, "Product not registered: "+slug)
		return
	}
	networkWide := c.Query("network") == "true" || p.NetworkOnly
	if err := hostSvc.Deactivate(p.Locator, networkWide); err != nil {
		respondDomainError(c, err)
		return
	}
	reg.Invalidate()
	auditlog.Log(c.ClientIP(), "admin", "deactivated product "+slug, "info")
	resp.RespondSuccessMessage(c, "Product deactivated.", nil)
}
