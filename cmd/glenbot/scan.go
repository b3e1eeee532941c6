package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skedroski/glen-ellyn-chatbot/internal/normalizer"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the raw corpus into a serialized record collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		records, err := normalizer.NewScanner(cfg.Corpus.Root).Scan()
		if err != nil {
			return err
		}
		if err := normalizer.SaveRecords(cfg.Corpus.Records, records); err != nil {
			return fmt.Errorf("save records: %w", err)
		}
		fmt.Printf("Saved %d records to %s\n", len(records), cfg.Corpus.Records)
		return nil
	},
}
