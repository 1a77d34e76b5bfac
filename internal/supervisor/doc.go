// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

/*
Package supervisor runs the long-lived parts of the recommendation server
under a suture v4 supervisor tree.

# Overview

	RootSupervisor ("streamrec")
	├── ModelSupervisor ("model-layer")
	│   ├── FileWatcherService   (if watch.enabled)
	│   └── RetrainService       (if retrain.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Services in the model layer replace the model held by recommend.Holder.
They can crash and restart without touching the HTTP server, which keeps
answering from the last published model.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddModelService(services.NewFileWatcherService(cfg.Watch.Debounce, watches...))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Once the counter passes FailureThreshold the supervisor waits
FailureBackoff before the next restart. A service that returns nil is not
restarted.

# Shutdown

Canceling the context stops every service. Services that do not return
within ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
