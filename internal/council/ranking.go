package council

import (
	"regexp"
	"strings"
)

const rankingMarker = "FINAL RANKING:"

var (
	reLabel         = regexp.MustCompile(`Response [A-Z]`)
	reNumberedLabel = regexp.MustCompile(`\d+\.\s*(Response [A-Z])`)
)

// ParseRanking extracts an ordered label sequence from a ranking model's
// free-text response. It prefers the numbered list following the
// "FINAL RANKING:" marker, falls back to any labels after the marker, and
// finally to labels anywhere in the text. Labels outside the run's alphabet
// are ignored and duplicates collapse to their first occurrence; an empty
// result means the ranking is absent.
func ParseRanking(raw string, known func(label string) bool) []string {
	section := raw
	if i := strings.Index(raw, rankingMarker); i >= 0 {
		section = raw[i+len(rankingMarker):]

		if numbered := reNumberedLabel.FindAllStringSubmatch(section, -1); len(numbered) > 0 {
			labels := make([]string, 0, len(numbered))
			for _, m := range numbered {
				labels = append(labels, m[1])
			}
			return filterLabels(labels, known)
		}
	}

	return filterLabels(reLabel.FindAllString(section, -1), known)
}

// filterLabels drops unknown labels and collapses duplicates to their first
// occurrence.
func filterLabels(labels []string, known func(string) bool) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if seen[l] || !known(l) {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
