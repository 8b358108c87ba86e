// Package pipeline runs one item end to end: metadata fetch, stream
// selection, concurrent download, structural verification, remux and sidecar
// bookkeeping. Each stage can short-circuit the item into one of the terminal
// outcomes without affecting the rest of the run.
package pipeline
