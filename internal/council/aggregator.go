package council

import "sort"

// ScorePolicy combines the 0-based rank positions one label received across
// all valid rankings into a single score. positions is empty for a label no
// ranking mentioned. Lower scores rank higher.
type ScorePolicy func(positions []int, numLabels, numRankings int) int

// SumPositions is the default policy: the sum of rank positions, with a
// fixed worst-score penalty for labels no ranking mentioned so silent
// members stay in the final ordering instead of being dropped. The penalty
// exceeds any achievable sum: (numLabels-1) * numRankings is the worst case
// for a label every ranking placed last.
func SumPositions(positions []int, numLabels, numRankings int) int {
	if len(positions) == 0 {
		return worstScore(numLabels, numRankings)
	}
	total := 0
	for _, p := range positions {
		total += p
	}
	return total
}

func worstScore(numLabels, numRankings int) int {
	return numLabels * numRankings
}

// aggregate combines all valid rankings into one Consensus. Ties break by
// stage-1 submission order, so the result is deterministic and independent
// of the order rankings arrive in.
func aggregate(a *anonymizer, rankings []Ranking, policy ScorePolicy) Consensus {
	labels := a.Labels()

	valid := make([]Ranking, 0, len(rankings))
	for _, r := range rankings {
		if r.Valid() {
			valid = append(valid, r)
		}
	}

	positions := make(map[string][]int, len(labels))
	for _, r := range valid {
		for pos, label := range r.Labels {
			positions[label] = append(positions[label], pos)
		}
	}

	// Rankings with no mentions still count toward the penalty scale: one
	// valid ranking minimum keeps the ordering meaningful.
	numRankings := len(valid)
	if numRankings == 0 {
		numRankings = 1
	}

	scores := make(map[string]int, len(labels))
	for _, label := range labels {
		scores[label] = policy(positions[label], len(labels), numRankings)
	}

	ordering := make([]string, len(labels))
	copy(ordering, labels)
	sort.SliceStable(ordering, func(i, j int) bool {
		si, sj := scores[ordering[i]], scores[ordering[j]]
		if si != sj {
			return si < sj
		}
		return a.submissionOrder(ordering[i]) < a.submissionOrder(ordering[j])
	})

	return Consensus{Scores: scores, Ordering: ordering}
}
