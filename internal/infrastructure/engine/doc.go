// Package engine provides SoftwareEngine, an in-process implementation of the
// handle-based crypto.CryptoEngine backed by the Go standard crypto packages,
// golang.org/x/crypto and cloudflare/circl.
//
// The engine owns every object it hands out: callers hold opaque handles and
// release each one exactly once with the matching Free function. Releasing an
// unknown handle, or releasing a handle with the wrong Free function, panics.
// Failures are reported both as a returned error and as entries on the
// engine's error queue, which callers drain with PopError.
package engine
