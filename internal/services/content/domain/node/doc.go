// Package node handles the node commands of a content stream.
//
// Handlers read the projected graph through contentgraph.Adapter, enforce
// the dimension space and node type rules, and return the events to publish.
// They never write: publication and projection belong to the engine.
package node
