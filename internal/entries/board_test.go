package entries

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	return NewBoard(BoardConfig{})
}

func mustEntry(t *testing.T, board *Board, id EntryID) Entry {
	t.Helper()
	entry, ok := board.Entry(id)
	if !ok {
		t.Fatalf("expected entry %d to be visible", id)
	}
	return entry
}

func TestBoardLifecycleScenario(t *testing.T) {
	board := newTestBoard(t)

	board.AddEntry(1, 100, "Buy milk", 10)
	got := board.Entries()
	want := []Entry{{ID: 1, Name: "Buy milk", State: EntryStateUndone}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected entries after add (-want +got):\n%s", diff)
	}

	board.MarkDone(1, 100, 20)
	if entry := mustEntry(t, board, 1); entry.State != EntryStateDone {
		t.Fatalf("expected entry to be done, got %q", entry.State)
	}

	board.DismissUser(100)
	if board.Count() != 0 {
		t.Fatalf("expected dismissing the sole author to hide the entry, count %d", board.Count())
	}
	if _, ok := board.Entry(1); ok {
		t.Fatalf("expected entry 1 to be invisible while its author is dismissed")
	}

	board.AllowUser(100)
	entry := mustEntry(t, board, 1)
	if entry.Name != "Buy milk" || entry.State != EntryStateDone {
		t.Fatalf("expected entry restored as done %q, got %+v", "Buy milk", entry)
	}
}

func TestBoardEqualTimestampAddsPreferLowerUser(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "A", 5)
	board.AddEntry(1, 2, "B", 5)

	if entry := mustEntry(t, board, 1); entry.Name != "A" {
		t.Fatalf("expected lower user id to win the name, got %q", entry.Name)
	}
}

func TestBoardRemoveBeatsAddAtEqualTimestamp(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "X", 7)
	board.RemoveEntry(1, 2, 7)

	if board.Count() != 0 {
		t.Fatalf("expected remove to win the equal-timestamp conflict, count %d", board.Count())
	}
}

func TestBoardStateDefaultsToUndone(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "pending", 5)

	if entry := mustEntry(t, board, 1); entry.State != EntryStateUndone {
		t.Fatalf("expected undone default, got %q", entry.State)
	}
}

func TestBoardDormantStateRevealedByLaterAdd(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "first", 10)
	board.MarkDone(1, 2, 15)
	board.RemoveEntry(1, 1, 20)

	if board.Count() != 0 {
		t.Fatalf("expected entry to be removed, count %d", board.Count())
	}

	// The done operation outlived the entry's existence; re-adding must
	// reveal it again.
	board.AddEntry(1, 1, "second", 30)
	entry := mustEntry(t, board, 1)
	if entry.Name != "second" {
		t.Fatalf("unexpected name %q", entry.Name)
	}
	if entry.State != EntryStateDone {
		t.Fatalf("expected dormant done state to resurface, got %q", entry.State)
	}
}

func TestBoardStateOperationAloneKeepsEntryInvisible(t *testing.T) {
	board := newTestBoard(t)
	board.MarkDone(7, 1, 10)

	if board.Count() != 0 {
		t.Fatalf("state operation alone must not make an entry visible")
	}

	board.AddEntry(7, 2, "late arrival", 5)
	entry := mustEntry(t, board, 7)
	if entry.State != EntryStateDone {
		t.Fatalf("expected earlier recorded done to apply, got %q", entry.State)
	}
}

func TestBoardDismissAllowRoundTripIsNoOp(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "A", 5)
	board.AddEntry(2, 2, "B", 6)
	board.MarkDone(1, 2, 7)
	board.RemoveEntry(2, 1, 8)

	before := board.Entries()
	board.DismissUser(2)
	board.AllowUser(2)
	after := board.Entries()

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("dismiss/allow round trip changed the view (-before +after):\n%s", diff)
	}
}

func TestBoardDismissedStateEqualsNeverSubmitted(t *testing.T) {
	withUser := newTestBoard(t)
	withUser.AddEntry(1, 1, "A", 5)
	withUser.MarkDone(1, 2, 9)
	withUser.AddEntry(2, 2, "B", 6)
	withUser.RemoveEntry(1, 2, 4)
	withUser.DismissUser(2)

	withoutUser := newTestBoard(t)
	withoutUser.AddEntry(1, 1, "A", 5)

	if diff := cmp.Diff(withoutUser.Entries(), withUser.Entries()); diff != "" {
		t.Fatalf("dismissed view differs from a world without the user (-want +got):\n%s", diff)
	}
}

func TestBoardOperationsRecordedWhileDismissedStayLatent(t *testing.T) {
	board := newTestBoard(t)
	board.DismissUser(9)
	board.AddEntry(3, 9, "hidden", 10)

	if board.Count() != 0 {
		t.Fatalf("dismissed user's add must not be visible")
	}
	if got := len(board.History(3)); got != 1 {
		t.Fatalf("expected the latent operation to be in the log, history length %d", got)
	}

	board.AllowUser(9)
	entry := mustEntry(t, board, 3)
	if entry.Name != "hidden" {
		t.Fatalf("expected latent add to surface after allow, got %+v", entry)
	}
}

func TestBoardDismissIsIdempotent(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "A", 5)

	board.DismissUser(1)
	board.DismissUser(1)
	board.AllowUser(1)

	if _, ok := board.Entry(1); !ok {
		t.Fatalf("expected a single allow to undo repeated dismissals")
	}
}

func TestBoardHistoryRetainsBannedOperations(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "A", 5)
	board.MarkDone(1, 1, 6)
	board.DismissUser(1)

	if got := len(board.History(1)); got != 2 {
		t.Fatalf("ban must not purge the log, history length %d", got)
	}
}

func TestBoardEntriesReturnsFreshSnapshot(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 1, "A", 5)

	first := board.Entries()
	first[0].Name = "mutated"

	second := board.Entries()
	if second[0].Name != "A" {
		t.Fatalf("snapshot mutation leaked into the board: %q", second[0].Name)
	}
}

func TestBoardEntryAbsentForUnknownID(t *testing.T) {
	board := newTestBoard(t)
	if _, ok := board.Entry(404); ok {
		t.Fatalf("expected unknown entry id to resolve as absent")
	}
}

func TestBoardGenerationAdvancesOnMutations(t *testing.T) {
	board := newTestBoard(t)
	if board.Generation() != 0 {
		t.Fatalf("expected fresh board at generation 0, got %d", board.Generation())
	}

	board.AddEntry(1, 1, "A", 5)
	board.DismissUser(1)
	board.AllowUser(1)
	board.AllowUser(1) // no-op, must not advance

	if board.Generation() != 3 {
		t.Fatalf("expected generation 3, got %d", board.Generation())
	}
}

func TestBoardViewMatchesPureResolution(t *testing.T) {
	board := newTestBoard(t)
	board.AddEntry(1, 3, "one", 10)
	board.AddEntry(1, 2, "uno", 10)
	board.MarkDone(1, 4, 11)
	board.AddEntry(2, 1, "two", 3)
	board.RemoveEntry(2, 5, 3)
	board.MarkUndone(2, 1, 9)
	board.DismissUser(5)

	for _, id := range []EntryID{1, 2} {
		name, visible := effectiveName(board.log, board.bans, id)
		entry, ok := board.Entry(id)
		if visible != ok {
			t.Fatalf("entry %d visibility mismatch: resolver %v view %v", id, visible, ok)
		}
		if !visible {
			continue
		}
		if entry.Name != name {
			t.Fatalf("entry %d name mismatch: resolver %q view %q", id, name, entry.Name)
		}
		if state := effectiveState(board.log, board.bans, id); entry.State != state {
			t.Fatalf("entry %d state mismatch: resolver %q view %q", id, state, entry.State)
		}
	}
}

type failingIDProvider struct{}

func (failingIDProvider) NewID() (string, error) {
	return "", errors.New("id source exhausted")
}

func TestBoardRecordingSurvivesIDProviderFailure(t *testing.T) {
	board := NewBoard(BoardConfig{IDProvider: failingIDProvider{}})
	board.AddEntry(1, 1, "still recorded", 5)

	entry := mustEntry(t, board, 1)
	if entry.Name != "still recorded" {
		t.Fatalf("recording must be total even when id generation fails, got %+v", entry)
	}
	history := board.History(1)
	if len(history) != 1 || history[0].ChangeID != "" {
		t.Fatalf("expected one operation with an empty change id, got %+v", history)
	}
}
