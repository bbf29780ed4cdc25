// Package parallel runs data-parallel loops over an index range.
//
// The range [0, n) is cut into contiguous, disjoint spans, one per worker.
// Every call to For is a barrier: it returns only after all spans have
// finished, so consecutive calls are strictly sequenced.
package parallel
