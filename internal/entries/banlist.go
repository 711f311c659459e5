package entries

import mapset "github.com/deckarep/golang-set/v2"

// BanList tracks the authors whose operations are currently excluded from
// conflict resolution. Membership is fully dynamic; the operation log itself
// is never touched when membership changes.
type BanList struct {
	members mapset.Set[UserID]
}

// NewBanList returns an empty ban list. The engine is single-caller, so the
// set does not need its own locking.
func NewBanList() *BanList {
	return &BanList{members: mapset.NewThreadUnsafeSet[UserID]()}
}

// Ban adds the user and reports whether membership changed.
func (b *BanList) Ban(user UserID) bool {
	if b.members.Contains(user) {
		return false
	}
	b.members.Add(user)
	return true
}

// Lift removes the user and reports whether membership changed.
func (b *BanList) Lift(user UserID) bool {
	if !b.members.Contains(user) {
		return false
	}
	b.members.Remove(user)
	return true
}

// Banned reports whether the user's operations are currently excluded.
func (b *BanList) Banned(user UserID) bool {
	return b.members.Contains(user)
}

// Size returns the number of currently banned users.
func (b *BanList) Size() int {
	return b.members.Cardinality()
}
