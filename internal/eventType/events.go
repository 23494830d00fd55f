package eventType

const (
	ConfigUpdated = "config.updated" // fired after the in-memory config changes; first fire happens on initial load

	ProcessStart = "process.start" // process startup, a listener error aborts the process
	ProcessExit  = "process.exit"  // process shutdown

	ServerInitializeStart = "server.routers.start" // route registration begins, a listener error aborts startup
	ServerInitializeDone  = "server.routers.done"  // route registration finished

	ProductRegistered   = "product.registered"   // a product record was written to the registry
	ProductUnregistered = "product.unregistered" // a product record was removed from the registry

	ScanCompleted   = "scan.completed"   // a full filesystem scan finished
	InstallStarted  = "install.started"  // an install/update pipeline began
	InstallComplete = "install.complete" // an install/update pipeline finished successfully
	InstallFailed   = "install.failed"   // an install/update pipeline aborted

	SchedulerEveryMinute    = "scheduler.everyminute"
	SchedulerEvery5Minutes  = "scheduler.every5minutes"
	SchedulerEvery30Minutes = "scheduler.every30minutes"
	SchedulerEveryHour      = "scheduler.everyhour"
	SchedulerEveryDay       = "scheduler.everyday" // does not fire on the day the server starts
)
