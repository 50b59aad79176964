// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for addressing a node
inside a scene, based on the canonical format `path`.

The format is a dot-separated sequence of child names, starting below the
scene root, e.g. `Level.Enemies.Enemy[2].Weapon`. A segment without an index
selects the first child carrying that name; `[n]` selects the n-th child
(zero-based) among siblings sharing the name. The empty address denotes the
scene root itself and is produced by Root, never by Parse.
*/
package nodeid
