package scheduler

import (
	"context"
	"time"

	"github.com/gookit/event"
	"github.com/psource-dev/psman/internal/database/auditlog"
	"github.com/psource-dev/psman/internal/eventType"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Module struct {
	stops []StopFunc
}

func FxModule() fx.Option {
	return fx.Options(
		fx.Provide(func() *Module { return &Module{} }),
		fx.Invoke(registerSchedulerLifecycle),
	)
}

func registerSchedulerLifecycle(lc fx.Lifecycle, m *Module, _ *gorm.DB) {
	// _ *gorm.DB ensures DB is initialized before scheduler starts.
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			m.start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			m.stop()
			return nil
		},
	})
}

func (m *Module) start() {
	doScheduledWork()

	m.stops = append(m.stops,
		Every(1*time.Minute, func() { event.Async(eventType.SchedulerEveryMinute, event.M{"interval": "1m"}) }),
		Every(5*time.Minute, func() { event.Async(eventType.SchedulerEvery5Minutes, event.M{"interval": "5m"}) }),
		Every(30*time.Minute, func() { event.Async(eventType.SchedulerEvery30Minutes, event.M{"interval": "30m"}) }),
		Every(1*time.Hour, func() { event.Async(eventType.SchedulerEveryHour, event.M{"interval": "1h"}) }),
		Every(24*time.Hour, func() { event.Async(eventType.SchedulerEveryDay, event.M{"interval": "1d"}) }),
	)
}

func (m *Module) stop() {
	for i := len(m.stops) - 1; i >= 0; i-- {
		if m.stops[i] != nil {
			m.stops[i]()
		}
	}
	m.stops = nil
}

// doScheduledWork registers the recurring maintenance listeners.
func doScheduledWork() {
	event.On(eventType.SchedulerEveryHour, event.ListenerFunc(func(e event.Event) error {
		auditlog.RemoveOldLogs()
		return nil
	}))
}
