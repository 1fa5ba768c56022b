package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/internal/config"
	"github.com/fastygo/learnpath/pkg/tasklist"
)

func generateCmd(newGenerator generatorFactory) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print five learning tasks for a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic = strings.TrimSpace(topic)
			if topic == "" {
				return domain.ErrEmptyTopic
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := commandLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			generator, err := newGenerator(cmd.Context(), cfg.Generation, log)
			if err != nil {
				return err
			}
			raw, err := generator.Generate(cmd.Context(), tasklist.Prompt(topic))
			if err == nil && strings.TrimSpace(raw) == "" {
				err = domain.ErrEmptyGeneration
			}
			if err != nil {
				return domain.WrapError(domain.ErrCodeGeneration, domain.MsgGenerationFailed, err)
			}
			tasks, err := tasklist.Normalize(raw, topic)
			if err != nil {
				return err
			}
			for i, task := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, task)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic to learn")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
