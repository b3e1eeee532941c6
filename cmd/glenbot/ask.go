package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skedroski/glen-ellyn-chatbot/internal/config"
	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
	"github.com/skedroski/glen-ellyn-chatbot/internal/indexer"
	"github.com/skedroski/glen-ellyn-chatbot/internal/normalizer"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		store, closeStore, err := buildStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := cmd.Context()
		if err := prepareIndex(ctx, cfg, emb, store); err != nil {
			return err
		}

		assistant := buildAssistant(cfg, emb, store)
		answer, err := assistant.Answer(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("sorry, I couldn't answer that: %w", err)
		}
		fmt.Println(answer.Text)
		return nil
	},
}

// prepareIndex fills a memory-backed store at startup, the way the
// original single-process flow did. Persistent stores already hold the
// ingested corpus and are left untouched.
func prepareIndex(ctx context.Context, cfg *config.AppConfig, emb domain.Embedder, store domain.VectorStore) error {
	if cfg.VectorStore.Type != "memory" && cfg.VectorStore.Type != "" {
		return nil
	}
	ix := indexer.New(buildChunker(cfg), emb, store)
	records, err := normalizer.LoadRecords(cfg.Corpus.Records)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load records: %w", err)
		}
		log.Printf("no record collection at %s, answering from building entries only", cfg.Corpus.Records)
	} else if _, err := ix.IndexRecords(ctx, records); err != nil {
		return err
	}
	if cfg.Corpus.Buildings == "" {
		return nil
	}
	entries, err := indexer.LoadBuildings(cfg.Corpus.Buildings)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err = ix.IndexBuildings(ctx, entries)
	return err
}
