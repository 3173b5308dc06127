package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hustada/prompt-architect/internal/editor"
	"github.com/Hustada/prompt-architect/internal/prompt"
	"github.com/Hustada/prompt-architect/internal/sections"
	"github.com/Hustada/prompt-architect/internal/server"
	"github.com/Hustada/prompt-architect/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	projectType string
	projectIdea string
	modelName   string
	outPath     string
	sectionArgs []string
	writeBack   bool
	showDiff    bool
	listLimit   int

	watchSections bool
)

func init() {
	for _, cmd := range []*cobra.Command{generateCmd, regenerateCmd} {
		cmd.Flags().StringVarP(&projectType, "type", "t", "fullstack", "Project type: frontend, backend or fullstack")
		cmd.Flags().StringVarP(&projectIdea, "idea", "i", "", "Project idea")
		cmd.Flags().StringVarP(&modelName, "model", "m", "", "Provider to use (openai, claude, gemini, grok, ollama); defaults to llm.provider")
	}
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the document to this file instead of stdout")
	_ = generateCmd.MarkFlagRequired("idea")
	_ = regenerateCmd.MarkFlagRequired("idea")

	regenerateCmd.Flags().StringSliceVarP(&sectionArgs, "section", "s", nil, "Section title to regenerate (repeatable); all sections when omitted")
	regenerateCmd.Flags().BoolVarP(&writeBack, "write", "w", false, "Write the result back to the file instead of stdout")
	regenerateCmd.Flags().BoolVar(&showDiff, "diff", false, "Print a diff of each changed section to stderr")

	sectionsCmd.Flags().BoolVar(&watchSections, "watch", false, "Keep running and list the sections again whenever the file changes")

	historyCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Number of records to list")
}

func projectFromFlags() prompt.ProjectContext {
	t, err := prompt.ParseProjectType(projectType)
	if err != nil {
		log.Fatalf("Invalid project: %v", err)
	}
	p := prompt.ProjectContext{Type: t, Idea: projectIdea}
	if err := p.Validate(); err != nil {
		log.Fatalf("Invalid project: %v", err)
	}
	return p
}

// saveRecord stores a CLI generation in the history; failures only warn.
func saveRecord(ctx context.Context, r storage.Record) {
	store, err := initStore()
	if err != nil {
		slog.Warn("record database unavailable", "error", err)
		return
	}
	defer store.Close()
	if err := store.SaveRecord(ctx, r); err != nil {
		slog.Warn("failed to save record", "error", err)
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new project specification",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		project := projectFromFlags()

		gen, err := newGenerators(cfg).Resolve(ctx, modelName)
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}

		session := editor.NewSession(gen, project, "")
		markdown, err := session.Generate(ctx)
		if errors.Is(err, editor.ErrNoSections) {
			// Keep the raw output so the user can see what the model returned.
			fmt.Fprintln(os.Stderr, "no sections found; raw model output follows")
			fmt.Println(markdown)
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		saveRecord(ctx, storage.Record{
			ID:          uuid.New().String(),
			ProjectType: string(project.Type),
			ProjectIdea: project.Idea,
			Model:       gen.Name(),
			Markdown:    markdown,
			CreatedAt:   time.Now().UTC(),
		})

		if outPath == "" {
			fmt.Println(markdown)
			return
		}
		if err := os.WriteFile(outPath, []byte(markdown+"\n"), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d sections to %s\n", session.Document().Len(), outPath)
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <file>",
	Short: "Regenerate one or more sections of a specification file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		path := args[0]
		project := projectFromFlags()

		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}

		gen, err := newGenerators(cfg).Resolve(ctx, modelName)
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}

		session := editor.NewSession(gen, project, string(raw))
		before := session.Document()
		if before.Len() == 0 {
			log.Fatalf("No sections found in %s", path)
		}

		markdown, regenErr := session.RegenerateAll(ctx, sectionArgs...)
		var failed editor.SectionErrors
		if regenErr != nil && !errors.As(regenErr, &failed) {
			log.Fatalf("Regeneration failed: %v", regenErr)
		}
		for _, se := range failed {
			fmt.Fprintf(os.Stderr, "Failed to regenerate %q: %s\n", se.SectionTitle, se.Message)
		}

		changes := editor.Changes(before, session.Document())
		if showDiff {
			for _, ch := range changes {
				fmt.Fprintf(os.Stderr, "--- %s\n%s\n", ch.Title, editor.Diff(ch.Before, ch.After))
			}
		}

		if len(changes) > 0 {
			saveRecord(ctx, storage.Record{
				ID:          uuid.New().String(),
				ProjectType: string(project.Type),
				ProjectIdea: project.Idea,
				Model:       gen.Name(),
				Section:     changes[0].Title,
				Markdown:    markdown,
				CreatedAt:   time.Now().UTC(),
			})
		}

		if writeBack {
			if err := os.WriteFile(path, []byte(markdown+"\n"), 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", path, err)
			}
			fmt.Fprintf(os.Stderr, "Regenerated %d sections in %s\n", len(changes), path)
		} else {
			fmt.Println(markdown)
		}

		if len(failed) > 0 {
			os.Exit(1)
		}
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections <file>",
	Short: "List the top-level sections of a markdown file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if err := printSections(path); err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		if !watchSections {
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(os.Stderr, "Watching %s for changes...\n", path)
		err := watchFile(ctx, path, func() {
			fmt.Println()
			if err := printSections(path); err != nil {
				slog.Warn("failed to reread file", "path", path, "error", err)
			}
		})
		if err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	},
}

func printSections(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, warnings := sections.ParseWithWarnings(string(raw))
	if doc.Len() == 0 {
		fmt.Println("no sections found")
		return nil
	}
	for i, s := range doc.Sections() {
		fmt.Printf("%2d. %s (%d bytes)\n", i+1, s.Title, len(s.Body))
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := initStore()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		srv := server.New(newGenerators(cfg).Resolve, store, slog.Default(), server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Mode:           cfg.Server.Mode,
		})
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List stored generations, or print one by id",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := initStore()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		if len(args) == 1 {
			r, err := store.GetRecord(ctx, args[0])
			if errors.Is(err, storage.ErrNotFound) {
				log.Fatalf("No record with id %s", args[0])
			}
			if err != nil {
				log.Fatalf("Failed to load record: %v", err)
			}
			fmt.Println(r.Markdown)
			return
		}

		records, err := store.ListRecords(ctx, listLimit)
		if err != nil {
			log.Fatalf("Failed to list records: %v", err)
		}
		if len(records) == 0 {
			fmt.Println("No records yet.")
			return
		}
		for _, r := range records {
			target := "document"
			if r.Section != "" {
				target = fmt.Sprintf("section %q", r.Section)
			}
			fmt.Printf("%s  %s  %-7s %-9s %s\n", r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Model, r.ProjectType, target)
		}
	},
}
