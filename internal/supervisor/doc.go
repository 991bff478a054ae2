// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

/*
Package supervisor runs Classfront's long-lived services under a suture v4
tree.

	RootSupervisor ("classfront")
	├── SessionSupervisor ("session-layer")
	│   ├── SessionCleanupService
	│   └── BadgerGCService (badger session store only)
	└── WebSupervisor ("web-layer")
	    └── HTTPServerService

A failing GC or cleanup loop restarts inside the session layer without
touching the HTTP server. Supervisor events are logged through sutureslog
into the zerolog pipeline.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddSessionService(services.NewSessionCleanupService(store, cfg.Session.CleanupInterval))
	tree.AddWebService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = <-tree.ServeBackground(ctx)

On cancellation each service gets ShutdownTimeout to return.
UnstoppedServiceReport names the ones that did not.
*/
package supervisor
