// Package app provides the reporting server's process lifecycle: starting
// the HTTP listener, waiting for an interrupt or server error, and
// shutting everything down within a bounded timeout.
//
// # Usage
//
//	lifecycle := app.New(server, logger, cfg.Report.ShutdownTimeout)
//	lifecycle.OnShutdown(otelProviders.Shutdown)
//	if err := lifecycle.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
