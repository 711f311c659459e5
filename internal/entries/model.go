package entries

import "fmt"

// OperationType enumerates the recorded mutation kinds.
type OperationType string

const (
	// OperationTypeAdd introduces an entry name (or renames an entry).
	OperationTypeAdd OperationType = "add"
	// OperationTypeRemove retracts an entry name.
	OperationTypeRemove OperationType = "remove"
	// OperationTypeMarkDone marks an entry as completed.
	OperationTypeMarkDone OperationType = "mark_done"
	// OperationTypeMarkUndone marks an entry as pending.
	OperationTypeMarkUndone OperationType = "mark_undone"
)

// slot identifies which facet of an entry an operation competes for. The name
// slot (add/remove) and the state slot (mark_done/mark_undone) are resolved
// independently of each other.
type slot int

const (
	slotName slot = iota
	slotState
)

func (t OperationType) slot() slot {
	switch t {
	case OperationTypeAdd, OperationTypeRemove:
		return slotName
	case OperationTypeMarkDone, OperationTypeMarkUndone:
		return slotState
	}
	panic(fmt.Sprintf("entries: unknown operation type %q", string(t)))
}

// EntryID identifies a list entry.
type EntryID int64

// Int64 exposes the raw identifier value.
func (id EntryID) Int64() int64 {
	return int64(id)
}

// UserID identifies the author of an operation.
type UserID int64

// Int64 exposes the raw identifier value.
func (id UserID) Int64() int64 {
	return int64(id)
}

// Timestamp is a caller-supplied logical timestamp. It is not wall-clock
// time: values may repeat, arrive out of order, or be negative.
type Timestamp int64

// Int64 exposes the raw timestamp value.
func (ts Timestamp) Int64() int64 {
	return int64(ts)
}

// EntryState enumerates the completion states of a visible entry.
type EntryState string

const (
	// EntryStateUndone marks a pending entry. It is the default when no
	// state operation applies.
	EntryStateUndone EntryState = "undone"
	// EntryStateDone marks a completed entry.
	EntryStateDone EntryState = "done"
)

// Operation is one immutable record in the log. Name is meaningful only for
// add operations. ChangeID is an opaque audit identifier assigned at record
// time; conflict resolution never consults it.
type Operation struct {
	Type     OperationType
	EntryID  EntryID
	UserID   UserID
	At       Timestamp
	Name     string
	ChangeID string
}

// Entry is the materialized view of a visible entry. It is derived from the
// log on demand and never stored authoritatively.
type Entry struct {
	ID    EntryID
	Name  string
	State EntryState
}
