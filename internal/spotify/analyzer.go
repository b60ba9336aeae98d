package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Context is the musical reading of a piece of conversation.
type Context struct {
	Mood        string   `json:"mood"`
	Activity    string   `json:"activity"`
	TimeContext string   `json:"time_context"`
	Weather     string   `json:"weather"`
	Genres      []string `json:"genres"`
	Era         string   `json:"era"`
	SearchTerms []string `json:"search_terms"`
}

// Summary renders the non-empty context fields for display.
func (c Context) Summary() string {
	var parts []string
	if c.Activity != "" {
		parts = append(parts, "activity: "+c.Activity)
	}
	if c.TimeContext != "" {
		parts = append(parts, "time: "+c.TimeContext)
	}
	if c.Weather != "" {
		parts = append(parts, "weather: "+c.Weather)
	}
	if c.Mood != "" && c.Mood != "neutral" {
		parts = append(parts, "mood: "+c.Mood)
	}
	return strings.Join(parts, ", ")
}

//go:embed lexicon.yaml
var lexiconYAML []byte

// lexEntry is one named keyword group in the lexicon.
type lexEntry struct {
	Name  string   `yaml:"name"`
	Words []string `yaml:"words"`
	Terms []string `yaml:"terms"`
}

func (e lexEntry) matches(text string) bool {
	for _, w := range e.Words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

type lexicon struct {
	Moods      []lexEntry `yaml:"moods"`
	Activities []lexEntry `yaml:"activities"`
	Times      []lexEntry `yaml:"times"`
	Weekend    lexEntry   `yaml:"weekend"`
	Weather    []lexEntry `yaml:"weather"`
	Genres     []lexEntry `yaml:"genres"`
	Eras       []lexEntry `yaml:"eras"`

	StopWords    []string `yaml:"stopWords"`
	SkipWords    []string `yaml:"skipWords"`
	DefaultTerms []string `yaml:"defaultTerms"`
}

func loadLexicon() lexicon {
	var lex lexicon
	if err := yaml.Unmarshal(lexiconYAML, &lex); err != nil {
		// The embedded file is part of the build; a parse failure is a bug.
		panic(fmt.Sprintf("spotify: embedded lexicon is invalid: %v", err))
	}
	return lex
}

const analyzerPromptFormat = `Analyze this text and extract comprehensive musical context. Return JSON with:
- mood: emotional state (e.g., "cozy", "relaxed", "energetic", "nostalgic", "peaceful", "warm")
- activity: what the person is doing (e.g., "cooking", "reading", "working", "exercising", null)
- time_context: time of day or occasion (e.g., "morning", "evening", "sunday", "weekend", null)
- weather: weather conditions if mentioned (e.g., "rainy", "sunny", "cozy", null)
- genres: list of relevant music genres (e.g., ["jazz", "acoustic", "instrumental", "lofi"])
- era: time period if mentioned (e.g., "2000s", "90s", null)
- search_terms: list of 5-8 keywords for music search, combining mood, activity, and context (e.g., ["cooking music", "sunday morning", "rainy day", "cozy", "family"])

Extract all contextual clues: activities, time, weather, mood, setting. Be creative with search terms.

Text: "%s"

Return ONLY valid JSON, no markdown.`

// Analyzer extracts a musical Context from free text. With an OpenAI key it
// asks the model; without one, or when the model call fails, it falls back to
// the embedded keyword lexicon.
type Analyzer struct {
	apiKey     string
	apiURL     string
	lex        lexicon
	httpClient *http.Client
}

// NewAnalyzer creates an Analyzer. apiKey may be empty.
func NewAnalyzer(apiKey string) *Analyzer {
	return &Analyzer{
		apiKey:     apiKey,
		apiURL:     "https://api.openai.com/v1/chat/completions",
		lex:        loadLexicon(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze returns the musical context of text. Never fails: the lexicon
// fallback always produces something usable.
func (a *Analyzer) Analyze(ctx context.Context, text string) Context {
	if a.apiKey == "" {
		return a.lexiconAnalyze(text)
	}
	if c, err := a.modelAnalyze(ctx, text); err == nil {
		return c
	}
	return a.lexiconAnalyze(text)
}

func (a *Analyzer) modelAnalyze(ctx context.Context, text string) (Context, error) {
	body := map[string]any{
		"model": "gpt-4o-mini",
		"messages": []map[string]any{
			{"role": "system", "content": "You are a music curation assistant."},
			{"role": "user", "content": fmt.Sprintf(analyzerPromptFormat, text)},
		},
		"temperature": 0.8,
		"max_tokens":  300,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Context{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(data))
	if err != nil {
		return Context{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Context{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Context{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Context{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Context{}, err
	}
	if len(parsed.Choices) == 0 {
		return Context{}, fmt.Errorf("empty choices")
	}

	var out Context
	if err := json.Unmarshal([]byte(strings.TrimSpace(parsed.Choices[0].Message.Content)), &out); err != nil {
		return Context{}, err
	}
	return out, nil
}

// lexiconAnalyze mirrors the model's output shape using keyword matching.
func (a *Analyzer) lexiconAnalyze(text string) Context {
	lower := strings.ToLower(text)
	out := Context{Mood: "neutral"}
	var terms []string

	for _, m := range a.lex.Moods {
		if m.matches(lower) {
			out.Mood = m.Name
			terms = append(terms, m.Terms...)
			break
		}
	}
	for _, act := range a.lex.Activities {
		if act.matches(lower) {
			out.Activity = act.Name
			terms = append(terms, act.Terms...)
			break
		}
	}
	for _, tc := range a.lex.Times {
		if tc.matches(lower) {
			out.TimeContext = tc.Name
			terms = append(terms, tc.Terms...)
			break
		}
	}
	if a.lex.Weekend.matches(lower) {
		out.TimeContext = strings.TrimSpace(out.TimeContext + " weekend")
		terms = append(terms, a.lex.Weekend.Terms...)
	}
	for _, w := range a.lex.Weather {
		if w.matches(lower) {
			out.Weather = w.Name
			terms = append(terms, w.Terms...)
			break
		}
	}
	for _, g := range a.lex.Genres {
		if g.matches(lower) {
			out.Genres = append(out.Genres, g.Name)
			terms = append(terms, g.Terms...)
		}
	}
	for _, e := range a.lex.Eras {
		if e.matches(lower) {
			out.Era = e.Name
			terms = append(terms, e.Terms...)
			break
		}
	}

	// Free-word pass: keep meaningful words that no category captured.
	stop := make(map[string]bool, len(a.lex.StopWords))
	for _, w := range a.lex.StopWords {
		stop[w] = true
	}
	skip := make(map[string]bool, len(a.lex.SkipWords))
	for _, w := range a.lex.SkipWords {
		skip[w] = true
	}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[strings.ToLower(t)] = true
	}
	for _, word := range strings.Fields(text) {
		clean := strings.Trim(word, ".,!?\"'")
		lw := strings.ToLower(clean)
		if len(lw) <= 2 || stop[lw] || skip[lw] || seen[lw] {
			continue
		}
		terms = append(terms, clean)
		seen[lw] = true
	}

	if len(terms) == 0 {
		terms = append(terms, a.lex.DefaultTerms...)
	}
	if len(terms) > 8 {
		terms = terms[:8]
	}
	out.SearchTerms = terms
	return out
}
