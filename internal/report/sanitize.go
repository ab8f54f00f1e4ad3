package report

import (
	"html"
	"regexp"
)

// Fragment is text or markup cleared for embedding in the diagnostic report.
// The report builder accepts only Fragments for model- or user-controlled
// text; raw strings from the pipeline never reach it directly.
type Fragment string

var (
	scriptElement = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleElement  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	// Orphaned opening/closing tags left by a truncated response.
	strayTag = regexp.MustCompile(`(?i)</?(script|style)\b[^>]*>`)
	// Any attribute with the event-handler prefix, quoted or bare.
	eventAttr = regexp.MustCompile(`(?i)\son\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
)

// SanitizeModelText strips script/style elements and event-handler attributes
// from model-authored prose. The markup itself is otherwise preserved; the
// analysis is intended to be rendered, so it is stripped, not escaped.
func SanitizeModelText(text string) Fragment {
	text = scriptElement.ReplaceAllString(text, "")
	text = styleElement.ReplaceAllString(text, "")
	text = strayTag.ReplaceAllString(text, "")
	text = eventAttr.ReplaceAllString(text, "")
	return Fragment(text)
}

// EscapeUserText HTML-escapes a literal user-supplied string. User text is
// lower-trust free text with no expected markup, so it is fully escaped
// rather than stripped; the two functions are never interchangeable.
func EscapeUserText(text string) Fragment {
	return Fragment(html.EscapeString(text))
}
