package learnings

import (
	"regexp"
	"strings"
)

// Save markers. The assistant is told in the system prompt to start a line
// with one of these when something should be remembered. This is a plain
// string contract with the prompt: changing either side breaks it.
const (
	MarkerSaved    = "✅ Gespeichert:"
	MarkerRemember = "Merke:"
)

var notePattern = regexp.MustCompile(`(?:Gespeichert:|Merke:) (.+)`)

// Extract returns the note carried by a reply, first match only.
// It reports false when the reply has no save marker.
func Extract(reply string) (string, bool) {
	if !strings.Contains(reply, MarkerSaved) && !strings.Contains(reply, MarkerRemember) {
		return "", false
	}
	m := notePattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return m[1], true
}
