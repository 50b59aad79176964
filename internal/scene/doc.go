// Package scene is the in-memory graph model shared by every stage of the
// reconcile pipeline.
//
// A scene is a tree of Nodes. Each node carries an ordered list of children
// (order is significant: it is the key used to pair template and candidate
// nodes), a set of attached Behaviors keyed by their type, and named user
// fields. All field values are cty.Values, which gives the model a single,
// typed, comparable representation for everything a node or behavior stores.
//
// Every node and behavior has an ID that is unique within the process.
// References between objects are stored as field values of the capsule type
// RefType, so a reference is just another leaf value that can be compared,
// copied and rewritten.
//
// # Field paths
//
// A field is addressed by a cty.Path made of attribute steps (object
// attributes) and string index steps (map keys). Known, non-null objects and
// maps are containers; every other value, including lists, sets, tuples,
// nulls and references, is a leaf.
//
// # Thread-safety
//
// Nodes are not safe for concurrent mutation. Concurrent reads are safe as
// long as no goroutine mutates the tree, which is how the classifier uses it.
package scene
