// Package hclscene reads and writes scenes as HCL.
//
// A scene file holds any number of top-level node blocks and an optional ui
// block:
//
//	node "Player" {
//	  health = 100
//
//	  behavior "Rigidbody" {
//	    mass   = 2.5
//	    follow = node_ref("Camera")
//	  }
//
//	  node "Weapon" {}
//	}
//
//	ui {
//	  expanded  = ["Player"]
//	  selection = ["Player", "Enemy[1]"]
//	}
//
// Attributes of a node block are its fields, behavior blocks attach
// behaviors, and nested node blocks are children in source order. Top-level
// nodes become children of an implicit, unnamed scene root.
//
// References are written as node_ref(address) and
// behavior_ref(address, type). Addresses are resolved against the scene root
// once every file has been built, so a reference may point forward or into
// another file.
package hclscene
