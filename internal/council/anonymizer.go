package council

import (
	"fmt"
	"math/rand"
)

// maxLabels caps one run at the label alphabet size ("Response A".."Response Z").
const maxLabels = 26

// labeled pairs an opaque label with the stage-1 response behind it.
// order is the response's stage-1 submission index, used for deterministic
// tie-breaking during aggregation.
type labeled struct {
	Label string
	Resp  StageResponse
	order int
}

// anonymizer owns the label↔member bijection for one run. The mapping is
// never exposed to models: stage-2 prompts see only labels, and only the
// aggregation/synthesis steps read it back.
type anonymizer struct {
	labeled []labeled // sorted by label
	byLabel map[string]labeled
}

// anonymize assigns each successful stage-1 response an opaque label. The
// assignment is a random permutation so label order leaks nothing about
// member identity or submission order.
func anonymize(responses []StageResponse, rng *rand.Rand) (*anonymizer, error) {
	if len(responses) > maxLabels {
		return nil, fmt.Errorf("too many responses to anonymize: %d (max %d)", len(responses), maxLabels)
	}

	perm := rng.Perm(len(responses))

	a := &anonymizer{
		labeled: make([]labeled, len(responses)),
		byLabel: make(map[string]labeled, len(responses)),
	}
	for slot, idx := range perm {
		l := labeled{
			Label: fmt.Sprintf("Response %c", 'A'+slot),
			Resp:  responses[idx],
			order: idx,
		}
		a.labeled[slot] = l
		a.byLabel[l.Label] = l
	}
	return a, nil
}

// Labels returns every label in alphabet order.
func (a *anonymizer) Labels() []string {
	out := make([]string, len(a.labeled))
	for i, l := range a.labeled {
		out[i] = l.Label
	}
	return out
}

// Known reports whether label belongs to this run.
func (a *anonymizer) Known(label string) bool {
	_, ok := a.byLabel[label]
	return ok
}

// Deanonymize returns the stage-1 response behind a label.
func (a *anonymizer) Deanonymize(label string) (StageResponse, bool) {
	l, ok := a.byLabel[label]
	return l.Resp, ok
}

// submissionOrder returns the stage-1 submission index behind a label.
func (a *anonymizer) submissionOrder(label string) int {
	return a.byLabel[label].order
}
