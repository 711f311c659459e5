package entries

import "fmt"

// supersedes reports whether challenger displaces incumbent as the winner of
// its slot. Both operations must target the same entry and the same slot;
// anything else is a caller bug and panics.
//
// Ordering: later timestamp wins. At equal timestamps with differing kinds,
// remove beats add in the name slot while mark_undone beats mark_done in the
// state slot; the direction is deliberately opposite between the two slots
// and must not be normalized. Remaining ties go to the lower user id, and a
// final name-slot tie between adds falls back to the lexicographically lower
// name so that resolution is a total order over any input.
func supersedes(challenger, incumbent Operation) bool {
	if challenger.EntryID != incumbent.EntryID {
		panic(fmt.Sprintf("entries: comparing operations across entries %d and %d",
			challenger.EntryID, incumbent.EntryID))
	}
	challengerSlot := challenger.Type.slot()
	if challengerSlot != incumbent.Type.slot() {
		panic(fmt.Sprintf("entries: comparing operations across slots (%q vs %q)",
			challenger.Type, incumbent.Type))
	}

	if challenger.At != incumbent.At {
		return challenger.At > incumbent.At
	}
	if challenger.Type != incumbent.Type {
		if challengerSlot == slotName {
			return challenger.Type == OperationTypeRemove
		}
		return challenger.Type == OperationTypeMarkUndone
	}
	if challenger.UserID != incumbent.UserID {
		return challenger.UserID < incumbent.UserID
	}
	return challenger.Name < incumbent.Name
}

// resolveSlot scans the entry's history and returns the winning operation for
// the slot, skipping operations from currently banned authors. A nil result
// means no eligible operation exists.
func resolveSlot(log *operationLog, bans *BanList, id EntryID, s slot) *Operation {
	var winner *Operation
	for _, idx := range log.byEntry[id] {
		op := log.ops[idx]
		if op.Type.slot() != s || bans.Banned(op.UserID) {
			continue
		}
		if winner == nil || supersedes(op, *winner) {
			candidate := op
			winner = &candidate
		}
	}
	return winner
}

// effectiveName resolves the name slot. The second return is false when the
// entry is not visible: no eligible add exists, or a remove wins.
func effectiveName(log *operationLog, bans *BanList, id EntryID) (string, bool) {
	winner := resolveSlot(log, bans, id, slotName)
	if winner == nil || winner.Type == OperationTypeRemove {
		return "", false
	}
	return winner.Name, true
}

// effectiveState resolves the state slot, defaulting to undone when no
// eligible state operation exists.
func effectiveState(log *operationLog, bans *BanList, id EntryID) EntryState {
	winner := resolveSlot(log, bans, id, slotState)
	if winner == nil || winner.Type == OperationTypeMarkUndone {
		return EntryStateUndone
	}
	return EntryStateDone
}
