package main

import (
	"fmt"
	"log/slog"

	"github.com/teamtrace/relato"
	"github.com/teamtrace/relato/pkg/config"
	"github.com/teamtrace/relato/pkg/embedder"
	"github.com/teamtrace/relato/pkg/store"
)

// buildStore constructs the storage backend named by config.
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "badger":
		return store.NewBadgerStore(cfg.Store.URI)
	case "neo4j":
		return store.NewNeo4jStore(cfg.Store.URI, cfg.Store.Username, cfg.Store.Password, cfg.Store.Database)
	case "postgres":
		pgCfg := cfg.Store.Postgres
		if pgCfg.MaxOpenConns == 0 {
			pgCfg = store.DefaultPostgresConfig()
		}
		return store.NewPostgresStore(cfg.Store.URI, pgCfg)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// buildEmbedder constructs the embedding client, wrapped with a circuit
// breaker when enabled.
func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	if cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
	}

	var client embedder.Client = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Config)
	if cfg.CircuitBreaker.Enabled {
		client = embedder.NewBreakerClient(client, cfg.CircuitBreaker.BreakerSettings(), "embedder")
	}
	return client, nil
}

// buildClient wires the store, embedder and core configuration into a
// relato client.
func buildClient(cfg *config.Config, logger *slog.Logger) (*relato.Client, error) {
	st, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to build embedder: %w", err)
	}

	clientConfig := relato.DefaultConfig()
	clientConfig.Inference = cfg.Inference
	clientConfig.Retrieval = cfg.Retrieval

	client, err := relato.NewClient(st, emb, clientConfig, logger)
	if err != nil {
		emb.Close()
		st.Close()
		return nil, err
	}
	return client, nil
}
