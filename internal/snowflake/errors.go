package snowflake

// ConnectError marks a failure to establish or authenticate the warehouse
// connection. Retryable with backoff; everything else that happens inside
// a load transaction indicates bad data and is fatal immediately.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// StatementError marks a failure executing a statement inside the load
// transaction (constraint violation, malformed value). Not retried: a row
// the warehouse rejects points at a normalization defect, not a transient
// condition.
type StatementError struct {
	Err error
}

func (e *StatementError) Error() string { return e.Err.Error() }
func (e *StatementError) Unwrap() error { return e.Err }
