// Package herald holds the core update-detection logic: the canonical
// announcement value, the durable seen-state watermark, and the novelty
// filter that decides which announcements from a poll are genuinely new.
package herald

// Announcement is the canonical, immutable form of one game-update
// announcement. Two announcements are the same announcement iff their
// GIDs are equal; PostedAt is advisory ordering information only.
type Announcement struct {
	GID      string
	Title    string
	Body     string
	PostedAt int64 // unix seconds
	Link     string
}
