package entries

// operationLog is the append-only source of truth plus two derived indexes.
// Operations are never removed or edited, even when their author is banned;
// a banned author's operations stay latent in the log so that lifting the
// ban is lossless.
type operationLog struct {
	ops     []Operation
	byEntry map[EntryID][]int
	byUser  map[UserID][]int
}

func newOperationLog() *operationLog {
	return &operationLog{
		byEntry: make(map[EntryID][]int),
		byUser:  make(map[UserID][]int),
	}
}

// record appends unconditionally and maintains both derived indexes. Order
// within an index bucket is arrival order, which the resolver ignores.
func (l *operationLog) record(op Operation) {
	idx := len(l.ops)
	l.ops = append(l.ops, op)
	l.byEntry[op.EntryID] = append(l.byEntry[op.EntryID], idx)
	l.byUser[op.UserID] = append(l.byUser[op.UserID], idx)
}

func (l *operationLog) size() int {
	return len(l.ops)
}

// entriesTouchedBy returns the distinct entry ids the user has ever targeted,
// regardless of operation kind or current ban status.
func (l *operationLog) entriesTouchedBy(user UserID) []EntryID {
	seen := make(map[EntryID]struct{})
	var touched []EntryID
	for _, idx := range l.byUser[user] {
		id := l.ops[idx].EntryID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		touched = append(touched, id)
	}
	return touched
}

// history returns a copy of every operation recorded against the entry, in
// arrival order, including operations from currently banned authors.
func (l *operationLog) history(id EntryID) []Operation {
	indexes := l.byEntry[id]
	if len(indexes) == 0 {
		return nil
	}
	ops := make([]Operation, 0, len(indexes))
	for _, idx := range indexes {
		ops = append(ops, l.ops[idx])
	}
	return ops
}
