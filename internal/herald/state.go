package herald

// SeenState is the watermark of delivered announcements. LastGID/LastPostedAt
// mark the most recently delivered announcement; Window holds the GIDs of
// recently delivered announcements (oldest first, bounded by the configured
// window size) so same-second reposts and feed reorderings can be rejected by
// identity rather than timestamp.
//
// The poll loop owns the state exclusively. All mutation goes through Advance,
// which returns a new value; persistence is the store's concern.
type SeenState struct {
	LastGID      string
	LastPostedAt int64
	Window       []string
}

// Empty reports whether the state carries no watermark yet (first run ever).
func (s SeenState) Empty() bool {
	return s.LastGID == ""
}

// Seen reports whether gid has already been delivered and is still inside
// the retention window.
func (s SeenState) Seen(gid string) bool {
	for _, w := range s.Window {
		if w == gid {
			return true
		}
	}
	return false
}

// WindowSet returns the window as a set, for membership checks across a whole
// batch. Building it once keeps batch filtering linear instead of scanning
// the window slice per event.
func (s SeenState) WindowSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Window))
	for _, w := range s.Window {
		set[w] = struct{}{}
	}
	return set
}

// Advance returns the state after the given announcements were delivered, in
// order. The watermark moves to the last element; all delivered GIDs join the
// window, evicting the oldest entries beyond windowSize. The timestamp
// watermark never moves backwards, even if the feed hands us an older entry.
func (s SeenState) Advance(published []Announcement, windowSize int) SeenState {
	if len(published) == 0 {
		return s
	}

	next := SeenState{
		LastGID:      s.LastGID,
		LastPostedAt: s.LastPostedAt,
		Window:       make([]string, len(s.Window), len(s.Window)+len(published)),
	}
	copy(next.Window, s.Window)

	for _, a := range published {
		if !next.Seen(a.GID) {
			next.Window = append(next.Window, a.GID)
		}
		next.LastGID = a.GID
		if a.PostedAt > next.LastPostedAt {
			next.LastPostedAt = a.PostedAt
		}
	}

	if windowSize > 0 && len(next.Window) > windowSize {
		next.Window = next.Window[len(next.Window)-windowSize:]
	}

	return next
}
