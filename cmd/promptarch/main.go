package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/Hustada/prompt-architect/internal/config"
	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/logging"
	"github.com/Hustada/prompt-architect/internal/metrics"
	"github.com/Hustada/prompt-architect/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "promptarch",
		Short: "Generate and edit structured project specifications with LLMs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c, err := config.LoadConfig(configPath)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}
			cfg = c
			logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
		},
	}
	configPath string
	dbPath     string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the record database (SQLite); defaults to storage.path from the config")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// initStore opens the record database named by --db or the config.
func initStore() (*storage.SQLiteStore, error) {
	path := dbPath
	if path == "" {
		path = cfg.Storage.Path
	}
	return storage.NewSQLiteStore(path)
}

// generators builds and caches one instrumented Generator per provider.
type generators struct {
	cfg *config.Config

	mu    sync.Mutex
	cache map[string]llm.Generator
}

func newGenerators(cfg *config.Config) *generators {
	return &generators{cfg: cfg, cache: make(map[string]llm.Generator)}
}

// Resolve maps a model name (a provider name such as "claude") to its Generator. An empty
// name selects the configured provider.
func (g *generators) Resolve(ctx context.Context, model string) (llm.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(model))
	if provider == "" {
		provider = strings.ToLower(g.cfg.LLM.Provider)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen, ok := g.cache[provider]; ok {
		return gen, nil
	}

	opts := llm.Options{
		Provider:    provider,
		APIKey:      g.cfg.APIKeyFor(provider),
		Temperature: g.cfg.LLM.Temperature,
		MaxTokens:   g.cfg.LLM.MaxTokens,
		Timeout:     g.cfg.LLM.Timeout,
	}
	// Model and base URL only apply to the configured provider.
	if strings.EqualFold(provider, g.cfg.LLM.Provider) {
		opts.Model = g.cfg.LLM.Model
		opts.BaseURL = g.cfg.LLM.BaseURL
	}

	gen, err := llm.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	instrumented := metrics.Instrument(gen)
	g.cache[provider] = instrumented
	return instrumented, nil
}
