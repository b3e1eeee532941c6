package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skedroski/glen-ellyn-chatbot/internal/chunker"
	"github.com/skedroski/glen-ellyn-chatbot/internal/config"
	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
	"github.com/skedroski/glen-ellyn-chatbot/internal/embedding/ollama"
	"github.com/skedroski/glen-ellyn-chatbot/internal/embedding/openai"
	"github.com/skedroski/glen-ellyn-chatbot/internal/generator"
	"github.com/skedroski/glen-ellyn-chatbot/internal/prompt"
	"github.com/skedroski/glen-ellyn-chatbot/internal/retriever"
	"github.com/skedroski/glen-ellyn-chatbot/internal/service"
	"github.com/skedroski/glen-ellyn-chatbot/internal/vectorstore/chroma"
	"github.com/skedroski/glen-ellyn-chatbot/internal/vectorstore/memory"
	"github.com/skedroski/glen-ellyn-chatbot/internal/vectorstore/sqlite"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "glenbot",
	Short: "Retrieval-augmented local history assistant for Glen Ellyn, IL",
	Long: `glenbot ingests local-history narratives and Sanborn building records
into a vector index and answers questions grounded in that archive.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ./config.yaml, then ~/.config/glenbot/config.yaml)")
	rootCmd.AddCommand(scanCmd, ingestCmd, askCmd, chatCmd)
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "ollama", "":
		oc := ollama.Config{}
		if cfg.Embedder.Ollama != nil {
			oc.BaseURL = cfg.Embedder.Ollama.BaseURL
			oc.Model = cfg.Embedder.Ollama.Model
			oc.Timeout = time.Duration(cfg.Embedder.Ollama.TimeoutSecs) * time.Second
		}
		return ollama.NewClient(oc), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// buildStore returns the configured vector store and a close function.
func buildStore(cfg *config.AppConfig) (domain.VectorStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStore(), noop, nil
	case "chroma":
		cc := chroma.Config{}
		if cfg.VectorStore.Chroma != nil {
			cc.URL = cfg.VectorStore.Chroma.URL
			cc.Collection = cfg.VectorStore.Chroma.Collection
			cc.Timeout = time.Duration(cfg.VectorStore.Chroma.TimeoutSecs) * time.Second
		}
		return chroma.NewStore(cc), noop, nil
	case "sqlite":
		path := "glenbot.db"
		if cfg.VectorStore.SQLite != nil && cfg.VectorStore.SQLite.Path != "" {
			path = cfg.VectorStore.SQLite.Path
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func buildChunker(cfg *config.AppConfig) domain.Chunker {
	return chunker.NewRecursiveChunker(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars)
}

func buildAssistant(cfg *config.AppConfig, emb domain.Embedder, store domain.VectorStore) *service.Assistant {
	r := retriever.New(emb, store)
	c := prompt.NewComposer(cfg.Prompt.ContextBudget)
	g := generator.NewOllama(generator.Config{
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
		Timeout: time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
	return service.NewAssistant(r, c, g, cfg.Retriever.TopK)
}
