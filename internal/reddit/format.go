package reddit

import (
	"regexp"
	"strings"

	"github.com/lepinkainen/steam-herald/internal/herald"
)

// Post is what the publisher submits: a selftext post in Reddit Markdown.
type Post struct {
	Title string
	Body  string
	Link  string
}

const footer = `^I'm ^a ^bot ^that ^posts ^game ^updates.`

var (
	bbURLNamed = regexp.MustCompile(`(?s)\[url=([^\]]+)\](.*?)\[/url\]`)
	bbList     = regexp.MustCompile(`(?m)^\s*\[\*\]\s*`)
	// Media payloads carry Steam CDN placeholders like {STEAM_CLAN_IMAGE}
	// that mean nothing on Reddit, so the whole span goes, not just the tags.
	bbMedia = regexp.MustCompile(`(?s)\[img\].*?\[/img\]|\[previewyoutube[^\]]*\].*?\[/previewyoutube\]`)
	bbStrip = regexp.MustCompile(`\[/?(?:list|olist)[^\]]*\]`)
)

// bbcodeReplacer handles the simple paired tags Steam uses in release notes.
var bbcodeReplacer = strings.NewReplacer(
	"[h1]", "# ", "[/h1]", "",
	"[h2]", "## ", "[/h2]", "",
	"[h3]", "### ", "[/h3]", "",
	"[b]", "**", "[/b]", "**",
	"[i]", "*", "[/i]", "*",
	"[u]", "", "[/u]", "",
	"[code]", "\n    ", "[/code]", "\n",
	"[url]", "", "[/url]", "",
)

// BBCodeToMarkdown converts Steam announcement BBCode to Reddit Markdown.
// Unknown tags are stripped rather than leaked into the post.
func BBCodeToMarkdown(body string) string {
	out := bbMedia.ReplaceAllString(body, "")
	out = bbURLNamed.ReplaceAllString(out, "[$2]($1)")
	out = bbList.ReplaceAllString(out, "- ")
	out = bbcodeReplacer.Replace(out)
	out = bbStrip.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// FormatPost renders an announcement as the post the publisher will submit.
func FormatPost(ann herald.Announcement) Post {
	var b strings.Builder
	b.WriteString(BBCodeToMarkdown(ann.Body))

	b.WriteString("\n\n---\n")
	if ann.Link != "" {
		b.WriteString("Source: [" + ann.Title + "](" + ann.Link + ")")
	} else {
		b.WriteString("(Source link not available)")
	}
	b.WriteString("\n\n---\n")
	b.WriteString(footer)

	return Post{
		Title: ann.Title,
		Body:  b.String(),
		Link:  ann.Link,
	}
}
