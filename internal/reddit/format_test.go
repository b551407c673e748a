package reddit

import (
	"strings"
	"testing"

	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/pkg/testutil"
)

func TestBBCodeToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "headings",
			in:   "[h1]Release Notes[/h1]",
			want: "# Release Notes",
		},
		{
			name: "bold and italic",
			in:   "[b]MAPS[/b] and [i]minor[/i] fixes",
			want: "**MAPS** and *minor* fixes",
		},
		{
			name: "list items",
			in:   "[list]\n[*]Fixed a crash\n[*]Tuned smokes\n[/list]",
			want: "- Fixed a crash\n- Tuned smokes",
		},
		{
			name: "named url",
			in:   "[url=https://example.com/notes]full notes[/url]",
			want: "[full notes](https://example.com/notes)",
		},
		{
			name: "unknown tags stripped",
			in:   "[img]{STEAM_CLAN_IMAGE}/x.png[/img]intro",
			want: "intro",
		},
		{
			name: "media spans removed with their payload",
			in:   "[previewyoutube=AbCd123;full]watch[/previewyoutube]\n[img]{STEAM_CLAN_IMAGE}/notes.png[/img]Patch live now",
			want: "Patch live now",
		},
		{
			name: "plain text unchanged",
			in:   "Just words.",
			want: "Just words.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BBCodeToMarkdown(tt.in); got != tt.want {
				t.Errorf("BBCodeToMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPost(t *testing.T) {
	ann := herald.Announcement{
		GID:      "ann-1",
		Title:    "Release Notes for 8/29/2026",
		Body:     "[h1]Release Notes[/h1]\n[list]\n[*]Fixed things\n[/list]",
		PostedAt: 1756400000,
		Link:     "https://store.steampowered.com/news/app/730/view/ann-1",
	}

	post := FormatPost(ann)

	if post.Title != ann.Title {
		t.Errorf("Title = %q, want announcement title", post.Title)
	}
	if !strings.Contains(post.Body, "# Release Notes") {
		t.Errorf("Body missing converted heading:\n%s", post.Body)
	}
	if !strings.Contains(post.Body, "Source: [Release Notes for 8/29/2026](https://store.steampowered.com/news/app/730/view/ann-1)") {
		t.Errorf("Body missing source link:\n%s", post.Body)
	}
	if !strings.Contains(post.Body, "^I'm ^a ^bot") {
		t.Errorf("Body missing bot footer:\n%s", post.Body)
	}
}

func TestFormatPost_NoLink(t *testing.T) {
	post := FormatPost(herald.Announcement{Title: "Update", Body: "fixes"})

	if !strings.Contains(post.Body, "(Source link not available)") {
		t.Errorf("Body should note the missing source link:\n%s", post.Body)
	}
}

func TestFormatPost_Golden(t *testing.T) {
	ann := herald.Announcement{
		GID:      "1234567890",
		Title:    "Release Notes for 8/29/2026",
		Body:     testutil.ReadFixture(t, "testdata/release_notes.bbcode"),
		PostedAt: 1788000000,
		Link:     "https://store.steampowered.com/news/app/730/view/1234567890",
	}

	post := FormatPost(ann)
	testutil.CompareGolden(t, "testdata/release_notes.md", post.Body)
}
