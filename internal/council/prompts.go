package council

import (
	"fmt"
	"strings"
)

// rankingPrompt asks a member to evaluate the anonymized answers and emit a
// machine-parseable ordering. The FINAL RANKING format contract is what
// ParseRanking expects.
func rankingPrompt(question string, a *anonymizer) string {
	var blocks []string
	for _, l := range a.labeled {
		blocks = append(blocks, fmt.Sprintf("%s:\n%s", l.Label, l.Resp.Text))
	}

	return fmt.Sprintf(`You are evaluating different responses to the following question:

Question: %s

Here are the responses from different models (anonymized):

%s

Your task:
1. Evaluate each response individually (strengths/weaknesses).
2. Provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "FINAL RANKING:" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")

FINAL RANKING:
1. Response [Label]
2. Response [Label]
...
`, question, strings.Join(blocks, "\n\n"))
}

// chairPrompt gives the chairperson the full deliberation: the question, all
// stage-1 answers attributed back to real model identities, and the computed
// consensus ordering.
func chairPrompt(question string, answers []StageResponse, rankings []Ranking, consensusOrder []string) string {
	var stage1 []string
	for _, r := range answers {
		if !r.OK() {
			continue
		}
		stage1 = append(stage1, fmt.Sprintf("Model: %s\nResponse: %s", r.Member, r.Text))
	}

	var stage2 []string
	for _, r := range rankings {
		summary := "No valid ranking found"
		if r.Valid() {
			summary = strings.Join(r.Labels, ", ")
		}
		stage2 = append(stage2, fmt.Sprintf("Model: %s\nRanking: %s", r.Member, summary))
	}

	return fmt.Sprintf(`You are the Chairperson of an LLM Council.

Original Question: %s

STAGE 1 - Individual Responses:
%s

STAGE 2 - Peer Rankings:
%s

Consensus ordering (best to worst): %s

Your task as Chairperson is to synthesize a single, comprehensive answer.
Consider the insights from Stage 1 and the consensus (or disagreement) from Stage 2.
`, question, strings.Join(stage1, "\n\n"), strings.Join(stage2, "\n\n"), strings.Join(consensusOrder, ", "))
}
