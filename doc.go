/*
Package statemon provides version control for game-state documents.

The primary goal of statemon is to track the evolution of a mutable game
state (such as a Monopoly session) as an immutable, branchable, taggable
history of snapshots, with structural diffing and three-way merging, and
to persist that history to pluggable storage backends.
*/
package statemon
