package models

import "fmt"

// SyncResult is the outcome of one sync call (per-entity or aggregate).
// A failed call reports Success=false with the underlying reason; records
// pushed before the failure stay committed.
type SyncResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SyncedCount int    `json:"syncedCount"`
}

// EntityStatus holds the record-store counters for one entity type.
// Total, Synced and Unsynced cover active records only; tombstones are
// reported separately as PendingDeletion since they still represent
// outstanding sync work but are no longer part of the data set.
type EntityStatus struct {
	Total           int `json:"total"`
	Synced          int `json:"synced"`
	Unsynced        int `json:"unsynced"`
	PendingDeletion int `json:"pendingDeletion"`
}

// SyncStatus is the per-user sync report. It is computed entirely from
// record-store counts; the secondary store is never touched.
type SyncStatus struct {
	Incomes      EntityStatus `json:"incomes"`
	Expenses     EntityStatus `json:"expenses"`
	Budgets      EntityStatus `json:"budgets"`
	SavingsGoals EntityStatus `json:"savingsGoals"`

	TotalRecords     int    `json:"totalRecords"`
	SyncedRecords    int    `json:"syncedRecords"`
	PendingDeletions int    `json:"pendingDeletions"`
	SyncPercentage   string `json:"syncPercentage"`
}

// Aggregate fills the cross-entity totals from the per-entity counters.
// SyncPercentage is defined as 100.00 when there are no records at all.
func (s *SyncStatus) Aggregate() {
	per := []EntityStatus{s.Incomes, s.Expenses, s.Budgets, s.SavingsGoals}

	s.TotalRecords, s.SyncedRecords, s.PendingDeletions = 0, 0, 0
	for _, e := range per {
		s.TotalRecords += e.Total
		s.SyncedRecords += e.Synced
		s.PendingDeletions += e.PendingDeletion
	}

	pct := 100.0
	if s.TotalRecords > 0 {
		pct = float64(s.SyncedRecords) / float64(s.TotalRecords) * 100
	}
	s.SyncPercentage = fmt.Sprintf("%.2f", pct)
}
