// Package models defines the record types held in the primary record store
// and the result/status types returned by the sync subsystem.
package models

import "time"

// Income is a single income record. The record store is authoritative for
// it; Synced and Deleted drive replication to the secondary store.
type Income struct {
	// ID is the record identifier, assigned at creation. It doubles as the
	// natural key in the secondary store.
	ID string `json:"id"`

	// UserID is the owning user. All queries are scoped by it.
	UserID string `json:"userId"`

	Amount      float64 `json:"amount"`
	Source      string  `json:"source"`
	Date        string  `json:"date"`
	Description string  `json:"description"`

	// Synced is false whenever the record has local changes not yet pushed
	// to the secondary store. Every mutation flips it back to false.
	Synced bool `json:"synced"`

	// Deleted marks the record as a tombstone awaiting deletion propagation.
	Deleted bool `json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
