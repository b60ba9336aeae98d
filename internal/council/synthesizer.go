package council

import (
	"context"
	"log/slog"

	"github.com/assistkit/assistkit/internal/shared/stringutils"
)

// synthesize asks the chairperson for the final answer. If the chairperson
// call fails, the top-ranked stage-1 answer is returned verbatim with the
// fallback flag set; the run is never aborted here.
func (o *Orchestrator) synthesize(
	ctx context.Context,
	chair, question string,
	stage1 []StageResponse,
	rankings []Ranking,
	consensusMembers []string,
	anon *anonymizer,
	consensus Consensus,
) (answer string, fallback bool) {
	prompt := chairPrompt(question, stage1, rankings, consensusMembers)

	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	text, err := o.client.Complete(callCtx, chair, prompt)
	if err == nil && text != "" {
		return stringutils.StripThink(text), false
	}
	slog.Warn("council: chairperson failed, falling back to top-ranked answer",
		"chairperson", chair, "err", err)

	top, _ := anon.Deanonymize(consensus.Ordering[0])
	return top.Text, true
}
