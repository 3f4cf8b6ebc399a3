// Package crypto defines the core types of the cryptographic facade: the static
// algorithm table and its capability checks, keys and key pairs that own engine
// handles, parameter objects, the error taxonomy, and the CryptoEngine contract
// that a native backend has to satisfy.
package crypto
