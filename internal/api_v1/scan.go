package api_v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
)

// RunScan triggers a reconciliation pass over the content directories.
func RunScan(c *gin.Context) {
	res, err := scanSvc.ScanAll()
	if err != nil {
		respondDomainError(c, err)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "manual scan completed", "info")
	resp.RespondSuccess(c, res)
}

// GetLastScan reports the outcome of the most recent scan.
func GetLastScan(c *gin.Context) {
	slugs, at := scanSvc.Discovered()
	resp.RespondSuccess(c, gin.H{
		"discovered": slugs,
		"last_scan":  at.Format(time.RFC3339),
		"scanned":    !at.IsZero(),
	})
}
