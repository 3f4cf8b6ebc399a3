// Package v1 serves the key catalog and the cryptographic operations over
// HTTP with gin.
package v1
