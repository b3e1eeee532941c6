package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/skedroski/glen-ellyn-chatbot/internal/indexer"
	"github.com/skedroski/glen-ellyn-chatbot/internal/normalizer"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed and index the record collection and building entries",
	Long: `ingest reads the serialized record collection produced by scan, chunks
and embeds each record, and stores the chunks in the vector index. If a
building-entry file is configured it is indexed as well; building IDs are
derived from address and year, so re-ingesting them overwrites in place.`,
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
		if ingestClear {
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clear index: %w", err)
			}
		}

		ix := indexer.New(buildChunker(cfg), emb, store)

		records, err := normalizer.LoadRecords(cfg.Corpus.Records)
		if err != nil {
			return fmt.Errorf("load records (run scan first?): %w", err)
		}
		n, err := ix.IndexRecords(ctx, records)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d chunks from %d records\n", n, len(records))

		if cfg.Corpus.Buildings != "" {
			entries, err := indexer.LoadBuildings(cfg.Corpus.Buildings)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Printf("No building entries at %s, skipping\n", cfg.Corpus.Buildings)
					return nil
				}
				return err
			}
			b, err := ix.IndexBuildings(ctx, entries)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d building entries\n", b)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the index before ingesting")
}
