/*
Package workspace serializes access to named trees.

A tree is not safe for concurrent use. The Manager owns a set of root widgets, one per
name, and runs every read or mutation under a per-name mutex, optionally combined with a
distributed lock so that several replicas can drive the same page state.
*/
package workspace
