// Package config defines the configuration schema for assistkit.
//
// JSON keys use camelCase. Each tool's settings live in their own section so
// hosts can manage them independently; every section carries usable defaults
// and the structs are treated as immutable once loaded.
package config

// OpenWebUIConfig holds credentials for the OpenWebUI model endpoint.
type OpenWebUIConfig struct {
	// BaseURL of the OpenWebUI API. Empty means auto-detect
	// (localhost:3000 first, then the Docker host gateway).
	BaseURL string `json:"baseUrl,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

// FallbackConfig holds the OpenAI/OpenRouter fallback used when no OpenWebUI
// key can be resolved.
type FallbackConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseUrl"`
}

func defaultFallbackConfig() FallbackConfig {
	return FallbackConfig{BaseURL: "https://api.openai.com/v1"}
}

// CouncilConfig configures the multi-model council tool.
type CouncilConfig struct {
	// Models is a comma-separated list of model IDs, or "all" to expand to
	// every available model (capped at MaxModels).
	Models string `json:"models"`
	// Chairperson synthesizes the final answer. Empty means the first
	// council model.
	Chairperson string `json:"chairperson,omitempty"`
	// MaxModels caps roster expansion when Models is "all".
	MaxModels int `json:"maxModels"`
	// TimeoutSeconds bounds each individual model request.
	TimeoutSeconds int `json:"timeoutSeconds"`
}

func defaultCouncilConfig() CouncilConfig {
	return CouncilConfig{
		Models:         "openai/gpt-4.1,openai/gpt-4o-mini,google/gemini-2.5-flash",
		MaxModels:      5,
		TimeoutSeconds: 60,
	}
}

// DocsConfig configures the Google Apps Script document connector.
type DocsConfig struct {
	// WebhookURL is the "Web App" URL generated in Google Apps Script.
	WebhookURL string `json:"webhookUrl,omitempty"`
}

// N8NConfig configures the n8n workflow tool.
type N8NConfig struct {
	URL           string `json:"url"`
	BearerToken   string `json:"bearerToken,omitempty"`
	InputField    string `json:"inputField"`
	ResponseField string `json:"responseField"`
}

func defaultN8NConfig() N8NConfig {
	return N8NConfig{
		URL:           "http://n8n-ui:5678/webhook/invoke-n8n-agent",
		InputField:    "chatInput",
		ResponseField: "output",
	}
}

// PineconeConfig configures the Pinecone RAG tool.
type PineconeConfig struct {
	APIKey    string `json:"apiKey,omitempty"`
	IndexName string `json:"indexName,omitempty"`
	// OpenAIKey is used to generate embeddings.
	OpenAIKey string `json:"openAiKey,omitempty"`
	TopK      int    `json:"topK"`
}

func defaultPineconeConfig() PineconeConfig {
	return PineconeConfig{TopK: 5}
}

// SpotifyConfig configures the vibe controller tool.
type SpotifyConfig struct {
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	// OpenAIKey enables LLM-based semantic analysis; the keyword lexicon is
	// used when it is empty.
	OpenAIKey string `json:"openAiKey,omitempty"`
	Market    string `json:"market"`
}

func defaultSpotifyConfig() SpotifyConfig {
	return SpotifyConfig{Market: "US"}
}

// SlackConfig configures the optional Slack report notifier.
type SlackConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// StatusConfig configures where progress updates are delivered.
type StatusConfig struct {
	// SocketURL is a ws:// or wss:// endpoint for streaming status events to
	// the host UI. Empty means console output only.
	SocketURL string `json:"socketUrl,omitempty"`
}

// Config is the root configuration object.
type Config struct {
	OpenWebUI OpenWebUIConfig `json:"openWebUi"`
	Fallback  FallbackConfig  `json:"fallback"`
	Council   CouncilConfig   `json:"council"`
	Docs      DocsConfig      `json:"docs"`
	N8N       N8NConfig       `json:"n8n"`
	Pinecone  PineconeConfig  `json:"pinecone"`
	Spotify   SpotifyConfig   `json:"spotify"`
	Slack     SlackConfig     `json:"slack"`
	Status    StatusConfig    `json:"status"`
}

// DefaultConfig returns a Config populated with every default value.
func DefaultConfig() Config {
	return Config{
		Fallback: defaultFallbackConfig(),
		Council:  defaultCouncilConfig(),
		N8N:      defaultN8NConfig(),
		Pinecone: defaultPineconeConfig(),
		Spotify:  defaultSpotifyConfig(),
	}
}
