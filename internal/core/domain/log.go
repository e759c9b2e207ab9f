package domain

// Log is a raw log entry as returned by the source chain.
// It is transient: decoded within the scan cycle that fetched it and never retained.
type Log struct {
	Address     string
	Topics      []string
	Data        string
	BlockNumber uint64
	TxHash      string
	LogIndex    uint64
	Removed     bool
}
