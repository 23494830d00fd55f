package api_v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/conf"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/ws"
)

type installRequest struct {
	Slug string `json:"slug" form:"slug" binding:"required"`
	// Repo and Type are optional cross-checks against the catalog; a mismatch
	// rejects the request before any network traffic.
	Repo   string `json:"repo" form:"repo"`
	Type   string `json:"type" form:"type"`
	Update bool   `json:"update" form:"update"`
}

// InstallProduct runs one install synchronously and returns the resulting
// product record.
func InstallProduct(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := installer.VerifyRequest(req.Slug, req.Repo, req.Type); err != nil {
		resp.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	run := installSvc.Install
	if req.Update {
		run = installSvc.Update
	}
	p, err := run(req.Slug, nil)
	if err != nil {
		auditlog.Log(c.ClientIP(), "admin", "install of "+req.Slug+" failed: "+err.Error(), "error")
		respondDomainError(c, err)
		return
	}
	if p == nil {
		resp.RespondSuccessMessage(c, "Already up to date.", nil)
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "installed "+req.Slug+" "+p.Version, "info")
	resp.RespondSuccessMessage(c, "Installed.", p)
}

type installProgress struct {
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// InstallProductWS streams install stage transitions over a websocket. The
// request comes from the query string, or from the first JSON message when no
// slug query parameter is present. One progress message per stage, ending
// with done or failed.
func InstallProductWS(c *gin.Context) {
	_conn, err := ws.UpgradeRequest(c, func(r *http.Request) bool {
		if conf.Conf.Site.AllowCors {
			return true
		}
		return ws.CheckOrigin(r)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Failed to upgrade to WebSocket"})
		return
	}
	conn := ws.NewSafeConn(_conn)
	defer conn.Close()

	req := installRequest{
		Slug:   c.Query("slug"),
		Repo:   c.Query("repo"),
		Type:   c.Query("type"),
		Update: c.Query("update") == "true",
	}
	if req.Slug == "" {
		if err := conn.ReadJSON(&req); err != nil || req.Slug == "" {
			conn.WriteJSON(installProgress{Stage: string(installer.StageFailed), Detail: "expected {\"slug\": ...}"})
			return
		}
	}
	if err := installer.VerifyRequest(req.Slug, req.Repo, req.Type); err != nil {
		conn.WriteJSON(installProgress{Stage: string(installer.StageFailed), Detail: err.Error()})
		return
	}

	obs := func(stage installer.Stage, detail string) {
		conn.WriteJSON(installProgress{Stage: string(stage), Detail: detail})
	}
	run := installSvc.Install
	if req.Update {
		run = installSvc.Update
	}
	p, err := run(req.Slug, obs)
	if err != nil {
		auditlog.Log(c.ClientIP(), "admin", "install of "+req.Slug+" failed: "+err.Error(), "error")
		return
	}
	if p == nil {
		conn.WriteJSON(installProgress{Stage: string(installer.StageDone), Detail: "already up to date"})
		return
	}
	auditlog.Log(c.ClientIP(), "admin", "installed "+req.Slug+" "+p.Version, "info")
}
