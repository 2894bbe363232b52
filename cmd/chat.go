package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"massamba/internal/app"
	"massamba/internal/console"
	"massamba/internal/pkg/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with MassambaGPT in the terminal",
	Long:  `Start an interactive terminal session sharing the same storage as the API server.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.ValidateCore(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 对话输出占用 stdout，日志改写到 stderr
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
		if err := logger.Init(&cfg.Log); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close app")
		}
	}()

	if a.AI.Mock() {
		fmt.Fprintln(os.Stderr, "Aucune clé API configurée : réponses de démonstration.")
	}

	return console.New(a, os.Stdout).Run(ctx, os.Stdin)
}
