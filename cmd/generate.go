package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/convert"
	"github.com/knowgen/knowgen/pkg/document"
	"github.com/knowgen/knowgen/pkg/engine"
	"github.com/knowgen/knowgen/pkg/generator"
	"github.com/knowgen/knowgen/pkg/prompt"
	"github.com/knowgen/knowgen/pkg/tokens"
)

func newGenerateCmd() *cobra.Command {
	var (
		topic      string
		quantity   int
		engineName string
		category   string
		level      string
		theme      string
		force      bool
		showOutput bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a structured document for a topic",
		Long: `Reads knowgen.config.yml from the current directory, plans section
titles with the configured model, generates each section, and writes the
assembled document to the output directory in every supported format.

Examples:
  knowgen generate --topic linux
  knowgen generate --topic python --quantity 3 --category Tutorial
  knowgen generate --topic git --engine ollama --expertise-level Expert --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			cfg, err := config.Load(cwd)
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.Engine = engineName
			}
			if category != "" {
				cfg.Category = category
			}
			if level != "" {
				cfg.ExpertiseLevel = level
			}
			if quantity > 0 {
				cfg.Quantity = quantity
			}
			if theme != "" {
				cfg.Theme = theme
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			outputDir := filepath.Join(cwd, cfg.OutputDir)
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			mdPath := filepath.Join(outputDir, document.OutputFilename(
				topic, cfg.Category, cfg.ExpertiseLevel, cfg.Engine, cfg.Model()))
			if _, err := os.Stat(mdPath); err == nil && !force {
				return fmt.Errorf("output file already exists: %s (use --force to overwrite)", mdPath)
			}

			backend, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}

			prompts, err := prompt.NewBuilder(prompt.Options{
				Model:    cfg.Model(),
				Fallback: promptFallback(cfg.Engine),
				Category: cfg.Category,
				Dir:      cfg.PromptsDir,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			invokeOpts := engine.Options{Stream: cfg.Streaming()}
			if cfg.Engine == config.EngineOllama {
				invokeOpts.Think = cfg.Ollama.Think == nil || *cfg.Ollama.Think
			} else {
				invokeOpts.Temperature = cfg.OpenAI.Temperature
				invokeOpts.MaxTokens = cfg.OpenAI.MaxTokens
			}
			gen := generator.New(generator.Params{
				Engine:   backend,
				Prompts:  prompts,
				Logger:   logger,
				Invoke:   invokeOpts,
				Rates:    tokens.Rates{InputPer1K: cfg.Rates.InputPer1K, OutputPer1K: cfg.Rates.OutputPer1K},
				Sink:     &consoleSink{showOutput: showOutput},
				Observer: &progressPrinter{total: cfg.Quantity},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			start := time.Now()
			result, err := gen.Generate(ctx, generator.Request{
				Topic:          topic,
				Quantity:       cfg.Quantity,
				Category:       cfg.Category,
				ExpertiseLevel: cfg.ExpertiseLevel,
				ContextNote:    cfg.ContextNote(),
			})
			if err != nil {
				return err
			}
			if len(result.Sections) == 0 {
				logger.Warn("Nothing generated, no output written")
				return nil
			}

			bodies := make([]string, len(result.Sections))
			for i, section := range result.Sections {
				bodies[i] = section.Body
			}
			now := time.Now()
			doc := document.Assemble(document.Meta{
				Topic:          topic,
				Category:       cfg.Category,
				ExpertiseLevel: cfg.ExpertiseLevel,
				Model:          cfg.Model(),
				TokensUsed:     result.Usage.Total(),
				GeneratedAt:    now,
				Elapsed:        now.Sub(start),
			}, result.Overview, bodies)

			if err := os.WriteFile(mdPath, []byte(doc), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", mdPath, err)
			}
			logger.Infof("Wrote %s", mdPath)

			converter, err := convert.New(filepath.Join(cwd, "themes"), cfg.Theme, logger)
			if err != nil {
				logger.WithError(err).Warn("Skipping format conversion")
			} else {
				converter.All(mdPath, map[string]string{
					"title":    fmt.Sprintf("%s (%s, %s)", topic, cfg.Category, cfg.ExpertiseLevel),
					"category": cfg.Category,
					"date":     now.Format("2006-01-02 15:04:05"),
					"model":    cfg.Model(),
					"tokens":   fmt.Sprintf("%d", result.Usage.Total()),
				}, force)
			}

			logger.Infof("API usage: %d input tokens, %d output tokens, cost $%.4f",
				result.Usage.Input, result.Usage.Output, result.Cost)
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic to generate content for")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "Number of sections to generate (overrides config)")
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "Engine to use: openai or ollama (overrides config)")
	cmd.Flags().StringVar(&category, "category", "", "Content category (overrides config)")
	cmd.Flags().StringVar(&level, "expertise-level", "", "Target expertise level (overrides config)")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme for HTML/PDF output (overrides config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(&showOutput, "show-output", true, "Print model output while it streams")
	cmd.MarkFlagRequired("topic")

	return cmd
}

func buildEngine(cfg *config.Config, logger *logrus.Logger) (engine.Engine, error) {
	if cfg.Engine == config.EngineOllama {
		return engine.NewOllama(cfg.Ollama, logger), nil
	}
	return engine.NewOpenAI(cfg.OpenAI, logger)
}

func promptFallback(engineName string) string {
	if engineName == config.EngineOllama {
		return "llama"
	}
	return "openai"
}
