// Package keys defines the key catalog: metadata persisted for every
// generated key, the live key store, and the services operating on them.
package keys
