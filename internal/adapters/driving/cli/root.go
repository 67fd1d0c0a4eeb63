// Package cli implements the courtsearch command-line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/adapters/driven/config/file"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/adapters/driven/embedding/ollama"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/adapters/driven/storage/sqlite"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driven"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driving"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/services"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/facets"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/keyword"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/logger"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/querynorm"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/vector"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose bool
	dataDir string
)

// Package-level services, wired once per invocation. Tests swap these
// for mocks.
var (
	configStore   driven.ConfigStore
	caseStore     driven.CaseStore
	searchService driving.SearchService
	indexService  driving.IndexOrchestrator

	store *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "courtsearch",
	Short: "Search Pakistani higher court case law",
	Long: `courtsearch indexes and searches Pakistani higher court judgments.

It combines keyword (BM25) and semantic (vector) retrieval with
citation-aware query normalisation, so queries like "PPC 302",
"section 302" and "W.P. 123/2024" all find the right cases.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if !needsServices(cmd) {
			return nil
		}
		return initServices(cmd.Context())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.courtsearch/data)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// needsServices reports whether the command requires the full service
// stack. Version and help run without touching storage.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

// initServices wires storage, engines and services. Tests bypass this
// by pre-setting the package-level services.
func initServices(ctx context.Context) error {
	if searchService != nil {
		return nil
	}

	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	caseStore = store.CaseStore()
	indexStore := store.IndexStore()

	cfg := file.IndexingConfigFrom(configStore)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	embedder := connectEmbedding(ctx)

	holder := index.NewHolder()
	normaliser := querynorm.New()
	keywordEngine := keyword.NewEngine(holder)

	var vectorEngine driven.Searcher
	if embedder != nil {
		vectorEngine = vector.NewEngine(holder, embedder)
	}

	searchService = services.NewSearchService(holder, normaliser, keywordEngine, vectorEngine, facets.NewCounter(holder))
	indexService = services.NewIndexingService(caseStore, indexStore, embedder, holder, normaliser, cfg)

	// Restore the persisted snapshot so searches work immediately.
	if err := indexService.Restore(ctx); err != nil {
		logger.Warn("could not restore index: %v", err)
	}
	return nil
}

// connectEmbedding probes the embedding service. A missing service is
// not fatal: the engine degrades to keyword-only search.
func connectEmbedding(ctx context.Context) driven.EmbeddingService {
	embCfg := ollama.Config{
		BaseURL:    configStore.GetString("embedding.base_url"),
		Model:      configStore.GetString("embedding.model"),
		Dimensions: configStore.GetInt("embedding.dimensions"),
	}
	embedder := ollama.NewEmbeddingService(embCfg)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := embedder.Ping(pingCtx); err != nil {
		logger.Warn("embedding service unreachable, semantic search disabled: %v", err)
		return nil
	}
	logger.Debug("embedding service ready (model %s)", embedder.ModelName())
	return embedder
}
