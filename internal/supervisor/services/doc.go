// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package services adapts the server's long-running components to
// suture.Service so they can be placed in the supervisor tree.
//
//   - HTTPServerService: runs an *http.Server, shutting it down gracefully
//     when the tree stops.
//   - FileWatcherService: watches the model artifact and session log with
//     fsnotify and reloads them after a debounce period.
//   - RetrainService: retrains on a fixed interval, optionally once at
//     startup.
//
// Every service returns ctx.Err() when its context is canceled and a
// non-nil error only for failures that warrant a restart.
package services
