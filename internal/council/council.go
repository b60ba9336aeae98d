// Package council runs a three-stage multi-model deliberation: every council
// member answers the question, the members rank each other's anonymized
// answers, and a designated chairperson synthesizes the final response from
// the answers and the consensus ordering.
package council

import (
	"time"
)

// Role distinguishes regular council members from the chairperson.
type Role string

const (
	RoleRegular     Role = "regular"
	RoleChairperson Role = "chairperson"
)

// Member is one participating model endpoint. Immutable once the roster is
// resolved at the start of a run.
type Member struct {
	ID   string
	Role Role
}

// StageResponse is the outcome of invoking one member once in one stage.
type StageResponse struct {
	Member  string
	Text    string
	Failure string // non-empty when the call failed or timed out
	Elapsed time.Duration
}

// OK reports whether the member produced a usable response.
func (r StageResponse) OK() bool { return r.Failure == "" && r.Text != "" }

// Ranking is one member's ordered preference over the anonymized labels,
// best to worst. Labels is empty when the member's response was unparsable.
type Ranking struct {
	Member  string
	RawText string
	Labels  []string
}

// Valid reports whether the ranking contributes to aggregation.
func (r Ranking) Valid() bool { return len(r.Labels) > 0 }

// Consensus is the combined ordering derived from all valid rankings.
// Scores map each label to its aggregate score; lower is better. Ordering
// lists labels best to worst.
type Consensus struct {
	Scores   map[string]int
	Ordering []string
}

// RunState tracks one orchestration run through its pipeline.
type RunState int

const (
	StateStage1Pending RunState = iota
	StateStage1Done
	StateAnonymized
	StateStage2Pending
	StateStage2Done
	StateAggregated
	StateSynthesized
	StateFailed
)

var stateNames = map[RunState]string{
	StateStage1Pending: "STAGE1_PENDING",
	StateStage1Done:    "STAGE1_DONE",
	StateAnonymized:    "ANONYMIZED",
	StateStage2Pending: "STAGE2_PENDING",
	StateStage2Done:    "STAGE2_DONE",
	StateAggregated:    "AGGREGATED",
	StateSynthesized:   "SYNTHESIZED",
	StateFailed:        "FAILED",
}

func (s RunState) String() string { return stateNames[s] }

// Report is the terminal artifact of a successful run. Immutable once built.
type Report struct {
	Question    string
	Members     []Member
	Chairperson string

	// Answers holds every stage-1 result in submission order, including
	// failed members (Failure set, excluded from ranking).
	Answers []StageResponse

	// Rankings holds every stage-2 result; invalid ones carry no labels.
	Rankings []Ranking

	// ConsensusOrder lists member IDs best to worst, deanonymized from the
	// aggregated label ordering.
	ConsensusOrder []string

	// Answer is the chairperson's synthesis, or the top-ranked stage-1
	// answer when Fallback is set.
	Answer   string
	Fallback bool

	State   RunState
	Elapsed time.Duration
}
