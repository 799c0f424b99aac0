// Package engine runs commands against the content repository write side.
//
// A command is validated, dispatched to its handler, and the resulting batch
// is stamped with command metadata, validated against the event registry and
// published atomically. Published events are then applied to the projection
// when an applier is configured.
package engine
