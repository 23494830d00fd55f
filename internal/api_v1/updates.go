package api_v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/installer"
)

// GetUpdates sweeps the registry against upstream releases, honoring the
// release cache.
func GetUpdates(c *gin.Context) {
	rep, err := updatesSvc.Check()
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, rep)
}

// ForceCheckUpdates bypasses the release cache and sweeps upstream directly.
func ForceCheckUpdates(c *gin.Context) {
	rep, err := updatesSvc.ForceCheck()
	if err != nil {
		respondDomainError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "forced update check", "info")
	resp.RespondSuccess(c, rep)
}

// GetUpdateCount returns only the number of pending updates, cheap enough for
// a badge to poll.
func GetUpdateCount(c *gin.Context) {
	rep, err := updatesSvc.Check()
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, gin.H{"count": len(rep.Updates)})
}

// ApplyUpdate installs the latest release of one product if it is newer than
// the registered version.
func ApplyUpdate(c *gin.Context) {
	slug := c.Param("slug")
	if err := installer.VerifyRequest(slug, "", ""); err != nil {
		resp.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	p, err := installSvc.Update(slug, nil)
	if err != nil {
		auditlog.Log(c.ClientIP(), "admin", "update of "+slug+" failed: "+err.Error(), "error")
		respondDomainError(c, err)
		return
	}
	if p == nil {
		resp.RespondSuccessMessage(c, "Already up to date.", nil)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "updated "+slug+" to "+p.Version, "info")
	resp.RespondSuccessMessage(c, "Updated.", p)
}
