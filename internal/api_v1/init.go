package api_v1

import (
	"github.com/gin-gonic/gin"
	"github.com/gookit/event"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/eventType"
	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/installer"
	"github.com/psource-dev/psman/internal/registry"
	"github.com/psource-dev/psman/internal/scanner"
	"github.com/psource-dev/psman/internal/updates"
)

func init() {
	event.On(eventType.ServerInitializeStart, event.ListenerFunc(func(e event.Event) error {
		r := e.Get("engine").(*gin.Engine)
		hostSvc = e.Get("host").(host.Host)
		ghClient = e.Get("github").(*github.Client)
		reg = e.Get("registry").(*registry.Registry)
		scanSvc = e.Get("scanner").(*scanner.Scanner)
		installSvc = e.Get("installer").(*installer.Installer)
		updatesSvc = e.Get("updates").(*updates.Checker)
		LoadApiV1Routes(r)
		return nil
	}), event.Normal+5)

	event.On(eventType.SchedulerEveryDay, event.ListenerFunc(func(e event.Event) error {
		if scanSvc == nil {
			return nil
		}
		if _, err := scanSvc.ScanAll(); err != nil {
			auditlog.Log("", "scheduler", "scheduled scan failed: "+err.Error(), "error")
		}
		return nil
	}))
}

func LoadApiV1Routes(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	})

	r.Any("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	// public routes
	r.GET("/api/version", resp.GetVersion)
	r.GET("/api/catalog", GetCatalog)
	r.GET("/api/catalog/:slug", GetCatalogEntry)
	r.GET("/api/categories", GetCategories)

	// admin
	r.Use(AdminAuthMiddleware())
	adminAuthrized := r.Group("/api/admin")
	{
		productGroup := adminAuthrized.Group("/products")
		{
			productGroup.GET("", ListProducts)
			productGroup.GET("/:slug", GetProduct)
			productGroup.POST("", RegisterProduct)
			productGroup.DELETE("/:slug", UnregisterProduct)
			productGroup.POST("/:slug/activate", ActivateProduct)
			productGroup.POST("/:slug/deactivate", DeactivateProduct)
		}

		adminAuthrized.POST("/install", InstallProduct)
		adminAuthrized.GET("/install/ws", InstallProductWS) // websocket
		adminAuthrized.POST("/scan", RunScan)
		adminAuthrized.GET("/scan", GetLastScan)

		adminAuthrized.GET("/updates", GetUpdates)
		adminAuthrized.GET("/updates/count", GetUpdateCount)
		adminAuthrized.POST("/updates/check", ForceCheckUpdates)
		adminAuthrized.POST("/updates/apply/:slug", ApplyUpdate)

		adminAuthrized.GET("/github/:owner/:repo", GetRepoInfo)
		adminAuthrized.GET("/github/:owner/:repo/releases", GetRepoReleases)
		adminAuthrized.POST("/github/cache/clear", ClearGitHubCache)

		adminAuthrized.GET("/auditlog", GetAuditLog)
	}
}
