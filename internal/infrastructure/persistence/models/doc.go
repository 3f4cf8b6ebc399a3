// Package models contains the GORM models of the key catalog, kept apart
// from the domain entities they map to.
package models
