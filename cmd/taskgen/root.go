package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/internal/config"
	"github.com/fastygo/learnpath/internal/infrastructure/llm"
	"github.com/fastygo/learnpath/pkg/logger"
	"github.com/fastygo/learnpath/usecase"
)

// generatorFactory builds the model client for a command run.
type generatorFactory func(ctx context.Context, cfg config.GenerationConfig, log *zap.Logger) (usecase.Generator, error)

func defaultGenerator(ctx context.Context, cfg config.GenerationConfig, log *zap.Logger) (usecase.Generator, error) {
	return llm.NewGoogleAI(ctx, cfg, log)
}

func rootCmd(newGenerator generatorFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskgen",
		Short:         "Generate learning tasks and manage the task database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		generateCmd(newGenerator),
		migrateCmd(),
	)
	return root
}

func commandLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logger.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Encoding: "console"})
}
