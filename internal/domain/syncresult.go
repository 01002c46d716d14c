package domain

// SyncResult is the outcome of reconciling one collection with the remote
// store: a pulled-record count on success, or an error message. It plays the
// role of a sealed result type; Err == "" means success.
type SyncResult struct {
	// SyncedCount is the number of remote documents pulled into the
	// local store. Only meaningful when Err is empty.
	SyncedCount int `json:"synced_count"`

	// Err is a human-readable failure message, empty on success.
	Err string `json:"error,omitempty"`
}

// SyncSuccess builds a successful result carrying the pulled-document count.
func SyncSuccess(count int) SyncResult {
	return SyncResult{SyncedCount: count}
}

// SyncError builds a failed result from an error.
func SyncError(err error) SyncResult {
	if err == nil {
		return SyncResult{Err: "unknown error during sync"}
	}
	return SyncResult{Err: err.Error()}
}

// OK reports whether the collection synced successfully.
func (r SyncResult) OK() bool {
	return r.Err == ""
}

// FullSyncResult aggregates one result per synced collection. There is no
// partial-success state machine: a failure in one collection does not stop
// the others, and the aggregate is successful only when all three are.
type FullSyncResult struct {
	Transactions          SyncResult `json:"transactions"`
	Budgets               SyncResult `json:"budgets"`
	RecurringTransactions SyncResult `json:"recurring_transactions"`
}

// FullSyncError builds an aggregate where every collection carries the same
// failure, for errors raised before any collection sync could run.
func FullSyncError(err error) FullSyncResult {
	r := SyncError(err)
	return FullSyncResult{Transactions: r, Budgets: r, RecurringTransactions: r}
}

// IsSuccessful reports whether every collection synced.
func (r FullSyncResult) IsSuccessful() bool {
	return r.Transactions.OK() && r.Budgets.OK() && r.RecurringTransactions.OK()
}
