package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gookit/event"
	_ "github.com/psource-dev/psman/internal"
	"github.com/psource-dev/psman/internal/conf"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/eventType"
	logutil "github.com/psource-dev/psman/internal/log"
	"github.com/psource-dev/psman/internal/version"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// FxModule provides the gin engine, the domain services, and the HTTP server
// lifecycle.
func FxModule() fx.Option {
	return fx.Options(
		fx.Provide(newEngine),
		fx.Provide(newServices),
		fx.Invoke(registerHTTPLifecycle),
	)
}

func newEngine(cfg *conf.Config) (*gin.Engine, error) {
	if version.VersionHash != "unknown" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logutil.GinLogger())
	r.Use(logutil.GinRecovery())

	corsEnabled := &atomic.Bool{}
	corsEnabled.Store(cfg.Site.AllowCors)

	r.Use(func(c *gin.Context) {
		if corsEnabled.Load() {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Length, Content-Type, Authorization, Accept, X-Requested-With")
			c.Header("Access-Control-Expose-Headers", "Content-Length, Authorization")
			c.Header("Access-Control-Allow-Credentials", "false")
			c.Header("Access-Control-Max-Age", "43200")
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
		}
		c.Next()
	})

	event.On(eventType.ConfigUpdated, event.ListenerFunc(func(e event.Event) error {
		newConf := e.Get("new").(conf.Config)
		corsEnabled.Store(newConf.Site.AllowCors)
		return nil
	}), event.High)

	return r, nil
}

type httpServer struct {
	srv     *http.Server
	stopped chan struct{}
}

func registerHTTPLifecycle(lc fx.Lifecycle, engine *gin.Engine, svc *Services, cfg *conf.Config, _ *gorm.DB) {
	// _ *gorm.DB ensures the database is migrated before routes go live.
	hs := &httpServer{stopped: make(chan struct{})}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			if err, _ := event.Trigger(eventType.ServerInitializeStart, event.M{
				"engine":    engine,
				"host":      svc.Host,
				"github":    svc.GitHub,
				"registry":  svc.Registry,
				"scanner":   svc.Scanner,
				"installer": svc.Installer,
				"updates":   svc.Updates,
			}); err != nil {
				slog.Error("Something went wrong during ServerInitializeStart event.", slog.Any("error", err))
				return err
			}

			hs.srv = &http.Server{Addr: cfg.Listen, Handler: engine}
			event.Trigger(eventType.ServerInitializeDone, event.M{})

			log.Printf("Starting server on %s ...", cfg.Listen)
			go func() {
				defer close(hs.stopped)
				if err := hs.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					auditlog.Log("", "", "server encountered a fatal error: "+err.Error(), "error")
					event.Trigger(eventType.ProcessExit, event.M{})
					log.Printf("listen: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			auditlog.Log("", "", "server is shutting down", "info")
			event.Trigger(eventType.ProcessExit, event.M{})
			if hs.srv == nil {
				return nil
			}
			err := hs.srv.Shutdown(ctx)
			select {
			case <-hs.stopped:
			case <-ctx.Done():
			}
			return err
		},
	})
}
