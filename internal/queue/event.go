package queue

// EventType names a ledger change the alert evaluator reacts to.
type EventType string

const (
	EventTransactionCreated EventType = "transaction_created"
	EventTransactionUpdated EventType = "transaction_updated"
	EventTransactionVoided  EventType = "transaction_voided"
	EventSyncFailed         EventType = "sync_failed"
)

// LedgerEvent is the unit enqueued after a ledger write commits. IDs only;
// the worker re-reads current state so stale payloads cannot mislead it.
type LedgerEvent struct {
	EventType      EventType
	OrganizationID int64
	BusinessID     int64
	TransactionID  *int64
	BankAccountID  *int64
	TraceID        *string
	Attempt        int
}
