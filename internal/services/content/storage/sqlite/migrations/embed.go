// Package migrations contains embedded SQL migrations for the content event store.
package migrations

import "embed"

//go:embed events/*.sql
var EventsFS embed.FS
