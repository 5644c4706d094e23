// Package cutting implements the one-dimensional stock cutting planner.
// Requested lengths are first normalised so that none exceeds the stock
// length, then packed greedily into stock bars using either a best-fit or a
// first-fit placement policy. All functions are pure and safe to call from
// multiple goroutines.
package cutting
