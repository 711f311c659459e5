package entries

import (
	"sort"

	"go.uber.org/zap"
)

var noOpLogger = zap.NewNop()

const (
	opRecord      = "entries.record"
	opDismissUser = "entries.dismiss_user"
	opAllowUser   = "entries.allow_user"

	reasonIDGenerationFailed = "id_generation_failed"
)

// BoardConfig describes the optional collaborators of a Board.
type BoardConfig struct {
	Logger     *zap.Logger
	IDProvider IDProvider
}

// Board is the convergent materialized view over an append-only operation
// log and a dynamic ban list. Two boards fed the same multiset of operations
// in any order, with the same set of dismissed users, expose the same visible
// entries.
//
// A Board expects a single caller at a time; it performs no locking.
type Board struct {
	log    *operationLog
	bans   *BanList
	ids    IDProvider
	logger *zap.Logger

	// generation increments on every mutation, including ones with no
	// visible effect. Used for observability and cache coherence checks.
	generation uint64

	// Cached slot winners over non-banned operations only. Kept current
	// incrementally on record and rebuilt per entry on ban changes.
	nameWinners  map[EntryID]*Operation
	stateWinners map[EntryID]*Operation

	// view holds exactly the currently visible entries.
	view map[EntryID]Entry
}

// NewBoard constructs a Board. A nil logger degrades to a no-op logger and a
// nil id provider to the UUIDv7 provider.
func NewBoard(cfg BoardConfig) *Board {
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	ids := cfg.IDProvider
	if ids == nil {
		ids = NewUUIDProvider()
	}
	return &Board{
		log:          newOperationLog(),
		bans:         NewBanList(),
		ids:          ids,
		logger:       logger,
		nameWinners:  make(map[EntryID]*Operation),
		stateWinners: make(map[EntryID]*Operation),
		view:         make(map[EntryID]Entry),
	}
}

// AddEntry records an add operation carrying the entry name.
func (b *Board) AddEntry(entryID EntryID, userID UserID, name string, at Timestamp) {
	b.record(Operation{Type: OperationTypeAdd, EntryID: entryID, UserID: userID, Name: name, At: at})
}

// RemoveEntry records a remove operation.
func (b *Board) RemoveEntry(entryID EntryID, userID UserID, at Timestamp) {
	b.record(Operation{Type: OperationTypeRemove, EntryID: entryID, UserID: userID, At: at})
}

// MarkDone records a completion operation. It always lands in the log; its
// visible effect appears only while the entry resolves to visible.
func (b *Board) MarkDone(entryID EntryID, userID UserID, at Timestamp) {
	b.record(Operation{Type: OperationTypeMarkDone, EntryID: entryID, UserID: userID, At: at})
}

// MarkUndone records a pending operation, subject to the same visibility rule
// as MarkDone.
func (b *Board) MarkUndone(entryID EntryID, userID UserID, at Timestamp) {
	b.record(Operation{Type: OperationTypeMarkUndone, EntryID: entryID, UserID: userID, At: at})
}

func (b *Board) record(op Operation) {
	op.ChangeID = b.newChangeID(op)
	b.log.record(op)
	b.generation++

	if b.bans.Banned(op.UserID) {
		// Latent until the author is allowed again.
		b.logger.Debug("operation recorded for dismissed user",
			b.operationFields(op)...)
		return
	}

	b.advanceWinner(op)
	b.refreshView(op.EntryID)
	b.logger.Debug("operation recorded", b.operationFields(op)...)
}

// advanceWinner applies the incremental update rule: the new operation either
// displaces the cached slot winner or changes nothing.
func (b *Board) advanceWinner(op Operation) {
	winners := b.winners(op.Type.slot())
	current := winners[op.EntryID]
	if current == nil || supersedes(op, *current) {
		challenger := op
		winners[op.EntryID] = &challenger
	}
}

func (b *Board) winners(s slot) map[EntryID]*Operation {
	if s == slotName {
		return b.nameWinners
	}
	return b.stateWinners
}

// refreshView rebuilds the entry's materialized view from the cached slot
// winners. An absent or losing name winner makes the entry invisible; the
// state slot defaults to undone.
func (b *Board) refreshView(id EntryID) {
	name := b.nameWinners[id]
	if name == nil || name.Type == OperationTypeRemove {
		delete(b.view, id)
		return
	}
	state := EntryStateUndone
	if winner := b.stateWinners[id]; winner != nil && winner.Type == OperationTypeMarkDone {
		state = EntryStateDone
	}
	b.view[id] = Entry{ID: id, Name: name.Name, State: state}
}

// DismissUser excludes the user's operations from resolution and recomputes
// every entry the user has ever touched. Idempotent.
func (b *Board) DismissUser(userID UserID) {
	if !b.bans.Ban(userID) {
		return
	}
	b.generation++
	recomputed := b.recomputeTouchedBy(userID)
	b.logger.Info("user dismissed",
		zap.String("operation", opDismissUser),
		zap.Int64("user_id", userID.Int64()),
		zap.Int("entries_recomputed", recomputed),
		zap.Uint64("generation", b.generation))
}

// AllowUser reinstates the user's operations and recomputes every entry the
// user has ever touched. Idempotent.
func (b *Board) AllowUser(userID UserID) {
	if !b.bans.Lift(userID) {
		return
	}
	b.generation++
	recomputed := b.recomputeTouchedBy(userID)
	b.logger.Info("user allowed",
		zap.String("operation", opAllowUser),
		zap.Int64("user_id", userID.Int64()),
		zap.Int("entries_recomputed", recomputed),
		zap.Uint64("generation", b.generation))
}

// recomputeTouchedBy reruns full slot resolution for every entry the user has
// ever targeted, with the same resolver the record path uses.
func (b *Board) recomputeTouchedBy(user UserID) int {
	touched := b.log.entriesTouchedBy(user)
	for _, id := range touched {
		b.recomputeEntry(id)
	}
	return len(touched)
}

func (b *Board) recomputeEntry(id EntryID) {
	b.storeWinner(b.nameWinners, id, resolveSlot(b.log, b.bans, id, slotName))
	b.storeWinner(b.stateWinners, id, resolveSlot(b.log, b.bans, id, slotState))
	b.refreshView(id)
}

func (b *Board) storeWinner(winners map[EntryID]*Operation, id EntryID, winner *Operation) {
	if winner == nil {
		delete(winners, id)
		return
	}
	winners[id] = winner
}

// Entries returns a fresh snapshot of the currently visible entries, sorted
// by entry id. Re-querying after further mutations yields a new snapshot.
func (b *Board) Entries() []Entry {
	snapshot := make([]Entry, 0, len(b.view))
	for _, entry := range b.view {
		snapshot = append(snapshot, entry)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].ID < snapshot[j].ID
	})
	return snapshot
}

// Count returns the number of currently visible entries.
func (b *Board) Count() int {
	return len(b.view)
}

// Entry returns the visible entry for the id. The second return is false for
// unknown, removed, or fully banned-away entries.
func (b *Board) Entry(id EntryID) (Entry, bool) {
	entry, ok := b.view[id]
	return entry, ok
}

// History returns a copy of every operation recorded against the entry, in
// arrival order, including operations from currently dismissed users.
func (b *Board) History(id EntryID) []Operation {
	return b.log.history(id)
}

// Generation returns the mutation counter. It advances on every record,
// dismiss, and allow that changes anything.
func (b *Board) Generation() uint64 {
	return b.generation
}

func (b *Board) newChangeID(op Operation) string {
	id, err := b.ids.NewID()
	if err != nil {
		// Recording is total; the change id is audit-only, so degrade to
		// an empty id rather than surfacing the failure.
		b.logger.Error("entries service error",
			zap.String("operation", opRecord),
			zap.String("reason", reasonIDGenerationFailed),
			zap.Error(err),
			zap.Int64("entry_id", op.EntryID.Int64()),
			zap.Int64("user_id", op.UserID.Int64()))
		return ""
	}
	return id
}

func (b *Board) operationFields(op Operation) []zap.Field {
	return []zap.Field{
		zap.String("operation", opRecord),
		zap.String("type", string(op.Type)),
		zap.Int64("entry_id", op.EntryID.Int64()),
		zap.Int64("user_id", op.UserID.Int64()),
		zap.Int64("ts", op.At.Int64()),
		zap.String("change_id", op.ChangeID),
		zap.Uint64("generation", b.generation),
	}
}
