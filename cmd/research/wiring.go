package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jemygraw/researchgraph/config"
	"github.com/jemygraw/researchgraph/graph"
	"github.com/jemygraw/researchgraph/llms/langchain"
	"github.com/jemygraw/researchgraph/llms/openai"
	"github.com/jemygraw/researchgraph/log"
	"github.com/jemygraw/researchgraph/rag"
	"github.com/jemygraw/researchgraph/rag/ingest"
	"github.com/jemygraw/researchgraph/rag/loader"
	"github.com/jemygraw/researchgraph/rag/retriever"
	vectorstore "github.com/jemygraw/researchgraph/rag/store"
	"github.com/jemygraw/researchgraph/research"
	"github.com/jemygraw/researchgraph/store"
	"github.com/jemygraw/researchgraph/store/memory"
	"github.com/jemygraw/researchgraph/store/postgres"
	"github.com/jemygraw/researchgraph/store/redis"
	"github.com/jemygraw/researchgraph/store/sqlite"
)

// errOffline is returned by the placeholder generator of commands that never generate.
var errOffline = errors.New("no generator configured")

// app is the wired research stack of one command invocation.
type app struct {
	cfg         *config.Config
	logger      log.Logger
	ingestor    *ingest.Ingestor
	agent       *research.Agent
	tracer      *graph.Tracer
	checkpoints store.CheckpointStore
	closers     []func()
}

type appOptions struct {
	// withLLM builds a real generator; otherwise generation fails with errOffline.
	withLLM bool
	trace   bool
	// withStore opens the configured checkpoint backend.
	withStore bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	logger := log.NewGologLoggerWithLevel(cfg.LogLevel())
	log.SetDefaultLogger(logger)

	a := &app{cfg: cfg, logger: logger}

	var generator research.TextGenerator = research.GeneratorFunc(func(context.Context, []research.Message) (string, error) {
		return "", errOffline
	})
	if opts.withLLM {
		g, err := newGenerator(cfg)
		if err != nil {
			return nil, err
		}
		generator = g
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	vectors := vectorstore.NewInMemoryVectorStore(embedder)
	splitter := rag.NewRecursiveSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	a.ingestor = ingest.New(vectors, splitter,
		ingest.WithLogger(logger),
		ingest.WithArxivOptions(loader.WithBaseURL(cfg.Ingest.ArxivBaseURL), loader.WithLogger(logger)),
	)

	agentOpts := []research.Option{
		research.WithLogger(logger),
		research.WithSettings(cfg.Research),
		research.WithIngestor(a.ingestor),
	}
	if opts.trace {
		a.tracer = graph.NewTracer()
		a.tracer.AddHook(graph.NewLogHook(logger))
		agentOpts = append(agentOpts, research.WithTracer(a.tracer))
	}
	if opts.withStore {
		cps, closer, err := openCheckpointStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		a.checkpoints = cps
		a.closers = append(a.closers, closer)
		agentOpts = append(agentOpts, research.WithCheckpointStore(cps))
	}

	agent, err := research.NewAgent(generator, retriever.NewVectorRetriever(vectors, embedder), agentOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.agent = agent
	return a, nil
}

// Close releases the checkpoint backend.
func (a *app) Close() {
	for _, closer := range a.closers {
		closer()
	}
}

func newGenerator(cfg *config.Config) (research.TextGenerator, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	switch cfg.LLM.Provider {
	case "openai":
		return openai.New(
			openai.WithAPIKey(cfg.LLM.APIKey),
			openai.WithBaseURL(cfg.LLM.BaseURL),
			openai.WithModel(cfg.LLM.Model),
			openai.WithTemperature(float32(cfg.LLM.Temperature)),
		)
	default:
		return langchain.NewOpenAI(
			langchain.WithAPIKey(cfg.LLM.APIKey),
			langchain.WithBaseURL(cfg.LLM.BaseURL),
			langchain.WithModel(cfg.LLM.Model),
			langchain.WithTemperature(cfg.LLM.Temperature),
		)
	}
}

func newEmbedder(cfg *config.Config) (rag.Embedder, error) {
	if cfg.LLM.Embedder != "openai" {
		return rag.NewHashEmbedder(cfg.LLM.EmbeddingDim), nil
	}
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	opts := []langchain.Option{
		langchain.WithAPIKey(cfg.LLM.APIKey),
		langchain.WithBaseURL(cfg.LLM.BaseURL),
	}
	if cfg.LLM.EmbeddingModel != "" {
		opts = append(opts, langchain.WithEmbeddingModel(cfg.LLM.EmbeddingModel))
	}
	return langchain.NewEmbedder(opts...)
}

func openCheckpointStore(ctx context.Context, sc config.StoreConfig) (store.CheckpointStore, func(), error) {
	switch sc.Backend {
	case "sqlite":
		s, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: sc.Path, TableName: sc.Table})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "redis":
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{
			Addr:     sc.Addr,
			Password: sc.Password,
			DB:       sc.DB,
			Prefix:   sc.Prefix,
		})
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: sc.DSN, TableName: sc.Table})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("init postgres schema: %w", err)
		}
		return s, s.Close, nil
	default:
		return memory.NewMemoryCheckpointStore(), func() {}, nil
	}
}
