// Package resource provides scoped acquisition of engine handles with
// guaranteed, failure-aware release.
//
// Handles registered with Acquire are always released when the enclosing Run
// returns. Handles registered with AcquireUntilCommit are released only when
// the body fails, which lets a protocol hand a freshly created handle to its
// caller on success while still cleaning it up if a later step fails.
package resource
