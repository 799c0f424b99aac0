// Package timeouts defines shared timeout constants used across the content
// repository processes.
package timeouts

import "time"

// StoreBusy limits how long a SQLite connection waits for a locked database
// before a write fails.
const StoreBusy = 5 * time.Second

// TelemetryShutdown limits how long a process waits for pending spans to be
// flushed on exit.
const TelemetryShutdown = 5 * time.Second
