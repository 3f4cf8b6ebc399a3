// Package cryptography runs the generation, cipher, signature, agreement and
// digest protocols against a crypto.CryptoEngine. Every engine handle a
// protocol acquires is released exactly once, whether the protocol returns,
// fails or panics.
package cryptography
