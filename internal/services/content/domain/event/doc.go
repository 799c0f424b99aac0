// Package event defines the event envelope, the event-type registry, and the
// batch handed to the publication sink by the content repository write path.
//
// Events are immutable facts derived from accepted commands. The registry
// checks addressing and payload validity before a batch is published; the
// store assigns versions and content hashes.
package event
