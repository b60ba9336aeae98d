package stringutils

import "regexp"

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}
