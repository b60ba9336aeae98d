package council

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/assistkit/assistkit/internal/schema"
	"github.com/assistkit/assistkit/internal/status"
)

// Options configures one orchestrator. Set once at construction; a run never
// mutates it.
type Options struct {
	// Models is the explicit roster. Ignored when All is set.
	Models []string
	// All expands the roster to every available model, capped at MaxModels.
	All bool
	// Chairperson performs final synthesis. Empty means the first roster entry.
	Chairperson string
	// MaxModels caps roster expansion when All is set.
	MaxModels int
	// CallTimeout bounds each individual model request.
	CallTimeout time.Duration
}

// ParseRoster splits a comma-separated model list, recognizing the special
// value "all".
func ParseRoster(csv string) (models []string, all bool) {
	if strings.EqualFold(strings.TrimSpace(csv), "all") {
		return nil, true
	}
	for _, m := range strings.Split(csv, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models, false
}

// Orchestrator drives the three-stage council pipeline over a ModelClient.
type Orchestrator struct {
	client  schema.ModelClient
	opts    Options
	emitter status.Emitter
	rng     *rand.Rand
	policy  ScorePolicy
}

// New validates opts and returns an Orchestrator. Configuration problems
// (empty roster) fail here, before any stage begins.
func New(client schema.ModelClient, opts Options, emitter status.Emitter) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("council: nil model client")
	}
	if !opts.All && len(opts.Models) == 0 {
		return nil, fmt.Errorf("council: no council models configured")
	}
	if opts.MaxModels <= 0 {
		opts.MaxModels = 5
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	if emitter == nil {
		emitter = status.Nop
	}
	return &Orchestrator{
		client:  client,
		opts:    opts,
		emitter: emitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		policy:  SumPositions,
	}, nil
}

// SetScorePolicy replaces the default aggregation policy.
func (o *Orchestrator) SetScorePolicy(p ScorePolicy) {
	if p != nil {
		o.policy = p
	}
}

// advance moves the run's state machine forward.
func advance(s *RunState, next RunState) {
	*s = next
	slog.Debug("council: state transition", "state", next.String())
}

// Run executes one full deliberation and returns the terminal report.
// A nil report is returned only when zero members produce a stage-1 answer
// or the roster cannot be resolved; every other failure degrades locally.
func (o *Orchestrator) Run(ctx context.Context, question string) (*Report, error) {
	start := time.Now()
	state := StateStage1Pending

	roster, chair, err := o.resolveRoster(ctx)
	if err != nil {
		return nil, err
	}

	// Stage 1: every member answers the question independently.
	status.Info(o.emitter, "Stage 1: consulting %d council members: %s",
		len(roster), strings.Join(roster, ", "))

	stage1 := o.runStage(ctx, roster, func(string) string { return question })
	advance(&state, StateStage1Done)

	answered := successes(stage1)
	if len(answered) == 0 {
		advance(&state, StateFailed)
		detail := failureSummary(stage1)
		status.Error(o.emitter, "All council models failed: %s", detail)
		return nil, fmt.Errorf("all council models failed: %s", detail)
	}

	anon, err := anonymize(answered, o.rng)
	if err != nil {
		advance(&state, StateFailed)
		return nil, err
	}
	advance(&state, StateAnonymized)

	// Stage 2: the full roster ranks the anonymized answers. Members absent
	// from stage 1 may still rank; unparsable rankings are excluded later.
	status.Info(o.emitter, "Stage 2: council is reviewing peer responses...")
	advance(&state, StateStage2Pending)

	prompt := rankingPrompt(question, anon)
	stage2 := o.runStage(ctx, roster, func(string) string { return prompt })

	rankings := make([]Ranking, 0, len(stage2))
	for _, r := range stage2 {
		ranking := Ranking{Member: r.Member}
		if r.OK() {
			ranking.RawText = r.Text
			ranking.Labels = ParseRanking(r.Text, anon.Known)
		}
		rankings = append(rankings, ranking)
	}
	advance(&state, StateStage2Done)

	consensus := aggregate(anon, rankings, o.policy)
	advance(&state, StateAggregated)

	consensusMembers := make([]string, 0, len(consensus.Ordering))
	for _, label := range consensus.Ordering {
		if resp, ok := anon.Deanonymize(label); ok {
			consensusMembers = append(consensusMembers, resp.Member)
		}
	}

	// Stage 3: chairperson synthesis, with a verbatim top-answer fallback.
	status.Info(o.emitter, "Stage 3: chairperson is synthesizing the result...")
	answer, fallback := o.synthesize(ctx, chair, question, stage1, rankings, consensusMembers, anon, consensus)
	advance(&state, StateSynthesized)

	status.Done(o.emitter, "Council meeting adjourned.")

	return &Report{
		Question:       question,
		Members:        rosterMembers(roster, chair),
		Chairperson:    chair,
		Answers:        stage1,
		Rankings:       rankings,
		ConsensusOrder: consensusMembers,
		Answer:         answer,
		Fallback:       fallback,
		State:          state,
		Elapsed:        time.Since(start),
	}, nil
}

// resolveRoster expands and validates the configured roster against the
// endpoint's available models, and picks the chairperson.
func (o *Orchestrator) resolveRoster(ctx context.Context) ([]string, string, error) {
	available, listErr := o.client.ListModels(ctx)

	var roster []string
	if o.opts.All {
		if listErr != nil {
			return nil, "", fmt.Errorf("roster set to all models, but listing models failed: %w", listErr)
		}
		if len(available) == 0 {
			return nil, "", fmt.Errorf("roster set to all models, but the endpoint reports none")
		}
		roster = available
		if len(roster) > o.opts.MaxModels {
			status.Info(o.emitter, "Limiting council to %d models (of %d available).",
				o.opts.MaxModels, len(available))
			roster = roster[:o.opts.MaxModels]
		}
	} else {
		switch {
		case listErr != nil || len(available) == 0:
			// Could not verify, trust the configured list.
			status.Info(o.emitter, "Could not verify models with API, proceeding with configured list.")
			roster = o.opts.Models
		default:
			known := make(map[string]bool, len(available))
			for _, m := range available {
				known[m] = true
			}
			var missing []string
			for _, m := range o.opts.Models {
				if known[m] {
					roster = append(roster, m)
				} else {
					missing = append(missing, m)
				}
			}
			if len(missing) > 0 {
				status.Info(o.emitter, "Warning: the following models were not found and will be skipped: %s",
					strings.Join(missing, ", "))
			}
			if len(roster) == 0 {
				return nil, "", fmt.Errorf("none of the requested models (%s) are available",
					strings.Join(o.opts.Models, ", "))
			}
		}
	}

	chair := o.opts.Chairperson
	if chair == "" {
		chair = roster[0]
	}
	if listErr == nil && len(available) > 0 && !contains(available, chair) {
		status.Info(o.emitter, "Warning: chairperson model %q not found in available models. Trying anyway...", chair)
	}

	return roster, chair, nil
}

func rosterMembers(roster []string, chair string) []Member {
	members := make([]Member, len(roster))
	for i, id := range roster {
		role := RoleRegular
		if id == chair {
			role = RoleChairperson
		}
		members[i] = Member{ID: id, Role: role}
	}
	return members
}

func failureSummary(results []StageResponse) string {
	var parts []string
	for _, r := range results {
		if r.Failure != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Member, r.Failure))
		}
	}
	if len(parts) == 0 {
		return "unknown error"
	}
	return strings.Join(parts, "; ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
