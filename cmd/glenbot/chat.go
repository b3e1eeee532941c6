package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skedroski/glen-ellyn-chatbot/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive question-and-answer session",
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

		if err := prepareIndex(cmd.Context(), cfg, emb, store); err != nil {
			return err
		}

		assistant := buildAssistant(cfg, emb, store)
		_, err = tea.NewProgram(tui.New(assistant)).Run()
		return err
	},
}
