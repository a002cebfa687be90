// Package core implements the synchronization decision engine: the pair-tree
// model produced by scanning, the last-synchronized state model, category
// assignment, direction resolution, move detection, filter application, and
// the path-dependency check. The engine mutates the pair tree from a single
// worker thread; devices handed to it must be safe for concurrent usage.
package core
