package council

import (
	"math/rand"
	"reflect"
	"testing"
)

// newAnon builds an anonymizer over n members with a fixed seed, returning
// it plus a member→label reverse index for readable assertions.
func newAnon(t *testing.T, n int) (*anonymizer, map[string]string) {
	t.Helper()
	a, err := anonymize(respN(n), rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("anonymize: %v", err)
	}
	labelOf := make(map[string]string, n)
	for _, label := range a.Labels() {
		resp, _ := a.Deanonymize(label)
		labelOf[resp.Member] = label
	}
	return a, labelOf
}

func TestAggregate_SumOfPositions(t *testing.T) {
	a, labelOf := newAnon(t, 3)
	l0, l1, l2 := labelOf["model-0"], labelOf["model-1"], labelOf["model-2"]

	rankings := []Ranking{
		{Member: "m1", Labels: []string{l0, l1, l2}}, // l0=0 l1=1 l2=2
		{Member: "m2", Labels: []string{l0, l2, l1}}, // l0=0 l2=1 l1=2
	}

	c := aggregate(a, rankings, SumPositions)
	if c.Scores[l0] != 0 {
		t.Errorf("score[%s] = %d, want 0", l0, c.Scores[l0])
	}
	if c.Scores[l1] != 3 {
		t.Errorf("score[%s] = %d, want 3", l1, c.Scores[l1])
	}
	if c.Scores[l2] != 3 {
		t.Errorf("score[%s] = %d, want 3", l2, c.Scores[l2])
	}
	if c.Ordering[0] != l0 {
		t.Errorf("best = %s, want %s", c.Ordering[0], l0)
	}
	// l1 and l2 tie at 3: stage-1 submission order breaks the tie, and
	// model-1 was submitted before model-2.
	if c.Ordering[1] != l1 || c.Ordering[2] != l2 {
		t.Errorf("tie broken wrong: %v", c.Ordering)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a, labelOf := newAnon(t, 4)
	l := func(i int) string { return labelOf[respN(4)[i].Member] }

	rankings := []Ranking{
		{Member: "m1", Labels: []string{l(0), l(1), l(2), l(3)}},
		{Member: "m2", Labels: []string{l(1), l(0), l(3), l(2)}},
		{Member: "m3", Labels: []string{l(2), l(1), l(0), l(3)}},
	}

	want := aggregate(a, rankings, SumPositions)
	for seed := int64(0); seed < 10; seed++ {
		shuffled := make([]Ranking, len(rankings))
		copy(shuffled, rankings)
		rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := aggregate(a, shuffled, SumPositions)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("seed %d: shuffled rankings changed the consensus: got %+v, want %+v", seed, got, want)
		}
	}
}

func TestAggregate_UnrankedLabelGetsPenalty(t *testing.T) {
	a, labelOf := newAnon(t, 3)
	l0, l1, l2 := labelOf["model-0"], labelOf["model-1"], labelOf["model-2"]

	// One ranker omits l2 entirely.
	rankings := []Ranking{
		{Member: "m1", Labels: []string{l0, l1}},
	}

	c := aggregate(a, rankings, SumPositions)
	if want := worstScore(3, 1); c.Scores[l2] != want {
		t.Errorf("unranked label score = %d, want penalty %d", c.Scores[l2], want)
	}
	if c.Ordering[2] != l2 {
		t.Errorf("unranked label must sort last, got ordering %v", c.Ordering)
	}
}

func TestAggregate_SingleRanking(t *testing.T) {
	a, labelOf := newAnon(t, 2)
	l0, l1 := labelOf["model-0"], labelOf["model-1"]

	c := aggregate(a, []Ranking{{Member: "m1", Labels: []string{l1, l0}}}, SumPositions)
	if c.Ordering[0] != l1 || c.Ordering[1] != l0 {
		t.Errorf("single ranking must define the ordering, got %v", c.Ordering)
	}
}

func TestAggregate_InvalidRankingsExcluded(t *testing.T) {
	a, labelOf := newAnon(t, 2)
	l0, l1 := labelOf["model-0"], labelOf["model-1"]

	rankings := []Ranking{
		{Member: "m1", Labels: []string{l1, l0}},
		{Member: "m2"}, // unparsable, no labels
	}
	c := aggregate(a, rankings, SumPositions)
	if c.Scores[l1] != 0 || c.Scores[l0] != 1 {
		t.Errorf("invalid ranking leaked into scores: %v", c.Scores)
	}
}

func TestAggregate_NoValidRankings_SubmissionOrder(t *testing.T) {
	a, labelOf := newAnon(t, 3)

	c := aggregate(a, []Ranking{{Member: "m1"}}, SumPositions)
	want := []string{labelOf["model-0"], labelOf["model-1"], labelOf["model-2"]}
	if !reflect.DeepEqual(c.Ordering, want) {
		t.Errorf("with no valid rankings, ordering must fall back to submission order: got %v, want %v", c.Ordering, want)
	}
}
