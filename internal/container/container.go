// Package container wires core assistkit services using go.uber.org/dig.
package container

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/dig"

	"github.com/assistkit/assistkit/internal/config"
	"github.com/assistkit/assistkit/internal/council"
	"github.com/assistkit/assistkit/internal/docs"
	"github.com/assistkit/assistkit/internal/n8n"
	"github.com/assistkit/assistkit/internal/notify"
	"github.com/assistkit/assistkit/internal/providers"
	"github.com/assistkit/assistkit/internal/rag"
	"github.com/assistkit/assistkit/internal/schema"
	"github.com/assistkit/assistkit/internal/spotify"
	"github.com/assistkit/assistkit/internal/status"
	"github.com/assistkit/assistkit/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	modelClient schema.ModelClient
	emitter     status.Emitter
	orchestra   *council.Orchestrator
	docsClient  *docs.Client
	workflow    *n8n.Client
	scheduler   *n8n.ScheduleService
	retriever   *rag.Retriever
	ingestor    *rag.Ingestor
	finder      *spotify.Finder
	notifier    notify.Notifier
	registry    *tools.Registry
}

func (c *Container) ModelClient() schema.ModelClient   { return c.modelClient }
func (c *Container) Emitter() status.Emitter           { return c.emitter }
func (c *Container) Council() *council.Orchestrator    { return c.orchestra }
func (c *Container) Docs() *docs.Client                { return c.docsClient }
func (c *Container) Workflow() *n8n.Client             { return c.workflow }
func (c *Container) Scheduler() *n8n.ScheduleService   { return c.scheduler }
func (c *Container) Retriever() *rag.Retriever         { return c.retriever }
func (c *Container) Ingestor() *rag.Ingestor           { return c.ingestor }
func (c *Container) VibeFinder() *spotify.Finder       { return c.finder }
func (c *Container) Notifier() notify.Notifier         { return c.notifier }
func (c *Container) ToolRegistry() *tools.Registry     { return c.registry }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(newModelClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newEmitter); err != nil {
		return nil, err
	}
	if err := d.Provide(newCouncil); err != nil {
		return nil, err
	}
	if err := d.Provide(newDocsClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newWorkflowClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newScheduler); err != nil {
		return nil, err
	}
	if err := d.Provide(newEmbeddingClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newPineconeClient); err != nil {
		return nil, err
	}
	if err := d.Provide(newRetriever); err != nil {
		return nil, err
	}
	if err := d.Provide(newIngestor); err != nil {
		return nil, err
	}
	if err := d.Provide(newSpotifyFinder); err != nil {
		return nil, err
	}
	if err := d.Provide(newNotifier); err != nil {
		return nil, err
	}
	if err := d.Provide(newToolRegistry); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		client schema.ModelClient,
		emitter status.Emitter,
		orchestra *council.Orchestrator,
		docsClient *docs.Client,
		workflow *n8n.Client,
		scheduler *n8n.ScheduleService,
		retriever *rag.Retriever,
		ingestor *rag.Ingestor,
		finder *spotify.Finder,
		notifier notify.Notifier,
		registry *tools.Registry,
	) {
		result = &Container{
			modelClient: client,
			emitter:     emitter,
			orchestra:   orchestra,
			docsClient:  docsClient,
			workflow:    workflow,
			scheduler:   scheduler,
			retriever:   retriever,
			ingestor:    ingestor,
			finder:      finder,
			notifier:    notifier,
			registry:    registry,
		}
	})
	return result, err
}

func newModelClient(cfg *config.Config) (schema.ModelClient, error) {
	return providers.New(modelParams(cfg), os.Getenv)
}

// modelParams maps config onto provider params. The transport timeout follows
// the configured per-call council timeout so a long deliberation budget is
// not cut short by the HTTP client.
func modelParams(cfg *config.Config) providers.Params {
	return providers.Params{
		BaseURL:        cfg.OpenWebUI.BaseURL,
		APIKey:         cfg.OpenWebUI.APIKey,
		FallbackKey:    cfg.Fallback.APIKey,
		FallbackBase:   cfg.Fallback.BaseURL,
		RequestTimeout: time.Duration(cfg.Council.TimeoutSeconds) * time.Second,
	}
}

func newEmitter(cfg *config.Config) status.Emitter {
	if cfg.Status.SocketURL != "" {
		if ws, err := status.DialWebSocket(cfg.Status.SocketURL); err == nil {
			return ws
		}
		// An unreachable host socket degrades to console output.
	}
	return status.Console{}
}

func newCouncil(cfg *config.Config, client schema.ModelClient, emitter status.Emitter) (*council.Orchestrator, error) {
	models, all := council.ParseRoster(cfg.Council.Models)
	return council.New(client, council.Options{
		Models:      models,
		All:         all,
		Chairperson: cfg.Council.Chairperson,
		MaxModels:   cfg.Council.MaxModels,
		CallTimeout: time.Duration(cfg.Council.TimeoutSeconds) * time.Second,
	}, emitter)
}

func newDocsClient(cfg *config.Config) *docs.Client {
	return docs.NewClient(cfg.Docs.WebhookURL, 0)
}

func newWorkflowClient(cfg *config.Config) *n8n.Client {
	return n8n.NewClient(n8n.Params{
		URL:           cfg.N8N.URL,
		BearerToken:   cfg.N8N.BearerToken,
		InputField:    cfg.N8N.InputField,
		ResponseField: cfg.N8N.ResponseField,
	})
}

func newScheduler(cfg *config.Config) *n8n.ScheduleService {
	storePath := filepath.Join(config.DataDir(), "workflows", "jobs.json")
	_ = cfg // reserved for future per-config scheduler settings
	return n8n.NewScheduleService(storePath)
}

func newEmbeddingClient(cfg *config.Config) *rag.EmbeddingClient {
	return rag.NewEmbeddingClient(cfg.Pinecone.OpenAIKey, "")
}

func newPineconeClient(cfg *config.Config) *rag.PineconeClient {
	return rag.NewPineconeClient(cfg.Pinecone.APIKey, cfg.Pinecone.IndexName)
}

func newRetriever(cfg *config.Config, embedder *rag.EmbeddingClient, index *rag.PineconeClient, emitter status.Emitter) *rag.Retriever {
	return rag.NewRetriever(embedder, index, cfg.Pinecone.TopK, emitter)
}

func newIngestor(embedder *rag.EmbeddingClient, index *rag.PineconeClient, emitter status.Emitter) *rag.Ingestor {
	return rag.NewIngestor(embedder, index, emitter)
}

func newSpotifyFinder(cfg *config.Config, emitter status.Emitter) *spotify.Finder {
	auth := spotify.NewAuthClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	client := spotify.NewClient(auth, cfg.Spotify.Market)
	analyzer := spotify.NewAnalyzer(cfg.Spotify.OpenAIKey)
	return spotify.NewFinder(client, analyzer, emitter)
}

func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.Slack.Enabled {
		return notify.NopNotifier{}, nil
	}
	return notify.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel)
}

func newToolRegistry(
	orchestra *council.Orchestrator,
	docsClient *docs.Client,
	workflow *n8n.Client,
	retriever *rag.Retriever,
	ingestor *rag.Ingestor,
	finder *spotify.Finder,
	emitter status.Emitter,
) *tools.Registry {
	return tools.NewRegistryBuilder().
		WithTool(tools.NewCouncilTool(orchestra)).
		WithTool(tools.NewCreateDocTool(docsClient, emitter)).
		WithTool(tools.NewWorkflowTool(workflow, emitter)).
		WithTool(tools.NewRAGQueryTool(retriever)).
		WithTool(tools.NewRAGIngestTool(ingestor)).
		WithTool(tools.NewVibeTool(finder)).
		Build()
}
