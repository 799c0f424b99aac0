// Package command defines the closed set of write-side commands of the content
// repository.
//
// Commands express structural intent against one workspace. They are
// dispatched through Visitor, so a handler set must implement every command
// and adding a command fails to compile until every handler set supports it.
package command
