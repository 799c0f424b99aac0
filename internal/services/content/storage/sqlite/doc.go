// Package sqlite stores content repository events in SQLite.
//
// Each content stream is an append-only sequence of versioned events. A
// batch is published in one transaction and only when the stream is still at
// the batch's expected version.
package sqlite
