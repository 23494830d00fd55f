package api_v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
)

// GetAuditLog returns the newest audit entries.
func GetAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := auditlog.Recent(limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, logs)
}
