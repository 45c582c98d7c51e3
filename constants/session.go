package constants

// SessionState is the canonical state of a processing session.
type SessionState string

// Stable values (these exact strings appear in logs and session results).
const (
	StateExtracting SessionState = "EXTRACTING"  // stage 1: raw content + semantic summary
	StateOrganizing SessionState = "ORGANIZING"  // stage 2: typed record sets
	StateWriting    SessionState = "WRITING"     // stage 3: schema-evolving persistence
	StateCleaningUp SessionState = "CLEANING_UP" // temp artifact removal, runs on every path
	StateDone       SessionState = "DONE"        // terminal success
	StateFailed     SessionState = "FAILED"      // terminal failure, reachable from any state
)

// EntityTransactions is the default candidate entity when the semantic
// summary names none; it doubles as the destination table name.
const EntityTransactions = "transactions"

// DefaultCategory fills the category field of records that arrive without one.
const DefaultCategory = "Uncategorized"
