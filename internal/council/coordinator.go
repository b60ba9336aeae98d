package council

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/assistkit/assistkit/internal/shared/stringutils"
)

// promptFunc builds the prompt sent to one member during a stage.
type promptFunc func(member string) string

// runStage invokes every member once, concurrently, and returns one
// StageResponse per member in roster order. A member that errors or exceeds
// the per-call timeout yields a response with Failure set; the batch is never
// aborted by an individual member. No retries.
func (o *Orchestrator) runStage(ctx context.Context, members []string, prompt promptFunc) []StageResponse {
	results := make([]StageResponse, len(members))

	var g errgroup.Group
	for i, member := range members {
		i, member := i, member
		g.Go(func() error {
			start := time.Now()
			callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
			defer cancel()

			text, err := o.client.Complete(callCtx, member, prompt(member))
			resp := StageResponse{Member: member, Elapsed: time.Since(start)}
			switch {
			case err != nil:
				resp.Failure = err.Error()
			case text == "":
				resp.Failure = "empty response"
			default:
				resp.Text = stringutils.StripThink(text)
			}
			// Each goroutine writes only its own slot.
			results[i] = resp
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	return results
}

// successes filters a stage's results to the usable ones, preserving
// submission order.
func successes(results []StageResponse) []StageResponse {
	out := make([]StageResponse, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}
