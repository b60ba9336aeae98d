package council

import (
	"fmt"
	"strings"
)

// Markdown renders the report the way it is presented in chat: staged
// sections with per-model attribution, the consensus ordering, and the final
// synthesis.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# 🏛️ LLM Council Report\n\n")

	sb.WriteString("## Stage 1: Individual Perspectives\n")
	for _, a := range r.Answers {
		if a.OK() {
			sb.WriteString(fmt.Sprintf("### %s\n%s\n\n", a.Member, a.Text))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n*Absent: %s*\n\n", a.Member, a.Failure))
		}
	}

	sb.WriteString("\n## Stage 2: Peer Evaluation & Ranking\n")
	for _, rk := range r.Rankings {
		if rk.RawText != "" {
			sb.WriteString(fmt.Sprintf("### %s's Ranking\n%s\n\n", rk.Member, rk.RawText))
		} else {
			sb.WriteString(fmt.Sprintf("### %s's Ranking\n*No valid ranking.*\n\n", rk.Member))
		}
	}

	sb.WriteString("\n## Consensus Ranking\n")
	for i, member := range r.ConsensusOrder {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, member))
	}

	sb.WriteString(fmt.Sprintf("\n## Stage 3: Chairperson Synthesis (%s)\n", r.Chairperson))
	if r.Fallback {
		sb.WriteString("*Chairperson unavailable — showing the top-ranked response verbatim.*\n\n")
	}
	sb.WriteString(r.Answer)
	sb.WriteString("\n")

	return sb.String()
}
