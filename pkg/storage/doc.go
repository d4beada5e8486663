// Package storage implements core.Storage on top of GORM.
//
// The claim protocol never separates the read from the write: eligibility is
// re-checked in the WHERE clause of the claiming UPDATE, so the database
// itself rejects the transition when another worker already won. This is
// what makes N independent worker processes safe against one store.
package storage
