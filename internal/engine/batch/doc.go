// Package batch runs a callback over fixed-size slices of a work list with
// bounded concurrency and progress reporting. Sweeps use it to fan
// simulations out without unbounded goroutine growth; one failing batch
// does not stop its siblings.
package batch
