package steam

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/steam-herald/internal/herald"
)

// NormalizeError reports a raw event that cannot be mapped to a canonical
// announcement because a required field is missing or malformed.
type NormalizeError struct {
	EventGID string
	Field    string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("event %s: missing or invalid %s", e.EventGID, e.Field)
}

// updateKeywords marks titles that look like game-update announcements.
// Anything else on the feed (tournaments, sales) is skipped.
var updateKeywords = []string{"update", "release notes", "patch", "counter-strike 2"}

// IsUpdateAnnouncement reports whether a title looks like a game update.
func IsUpdateAnnouncement(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range updateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Normalize maps one raw event into the canonical announcement value. It is
// pure and total over the declared schema: unknown fields are ignored, only
// an absent GID, headline, or posttime is an error.
func Normalize(ev Event, appID int) (herald.Announcement, error) {
	ann := ev.AnnouncementBody
	if ann == nil {
		return herald.Announcement{}, &NormalizeError{EventGID: ev.GID, Field: "announcement_body"}
	}
	if ann.GID == "" {
		return herald.Announcement{}, &NormalizeError{EventGID: ev.GID, Field: "announcement_body.gid"}
	}
	if ann.Headline == "" {
		return herald.Announcement{}, &NormalizeError{EventGID: ev.GID, Field: "announcement_body.headline"}
	}
	if ann.PostTime <= 0 {
		return herald.Announcement{}, &NormalizeError{EventGID: ev.GID, Field: "announcement_body.posttime"}
	}

	return herald.Announcement{
		GID:      ann.GID,
		Title:    ann.Headline,
		Body:     ann.Body,
		PostedAt: ann.PostTime,
		Link:     fmt.Sprintf("https://store.steampowered.com/news/app/%d/view/%s", appID, ann.GID),
	}, nil
}
