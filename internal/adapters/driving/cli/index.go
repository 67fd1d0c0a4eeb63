package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/ports/driving"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index management commands",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or update the search index",
	Long: `Chunks, embeds and indexes every stored case. Subsequent builds
are incremental: cases whose content is unchanged are reused. Use
--force to re-process everything.`,
	RunE: runIndexBuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index health and coverage",
	RunE:  runIndexStatus,
}

func init() {
	indexBuildCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "re-process all cases")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("indexing service not configured")
	}

	buildLog, err := indexService.Build(cmd.Context(), driving.BuildOptions{Force: indexForce})
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprintf(cmd.OutOrStdout(), "Build %s complete (%s)\n", buildLog.BuildID, buildLog.Operation)
	cmd.Printf("  cases processed: %d\n", buildLog.CasesProcessed)
	cmd.Printf("  chunks created:  %d\n", buildLog.ChunksCreated)
	cmd.Printf("  vectors created: %d\n", buildLog.VectorsCreated)
	if buildLog.ChunksSkipped > 0 {
		color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(),
			"  chunks skipped:  %d (embedding failures)\n", buildLog.ChunksSkipped)
	}
	cmd.Printf("  duration:        %s\n", buildLog.Duration().Round(time.Millisecond))
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("indexing service not configured")
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("getting status: %w", err)
	}

	if !status.Built {
		cmd.Println("Index not built. Run 'courtsearch index build'.")
		return nil
	}

	cmd.Println("Index Status")
	cmd.Println("============")
	cmd.Printf("  version:         %d\n", status.Version)
	cmd.Printf("  config version:  %s\n", status.ConfigVersion)
	cmd.Printf("  embedding model: %s (%d dims)\n", status.EmbeddingModel, status.Dimension)
	cmd.Printf("  cases indexed:   %d of %d (%.0f%% coverage)\n",
		status.CaseCount, status.TotalCases, status.Coverage*100)
	cmd.Printf("  chunks:          %d (%d with vectors)\n", status.ChunkCount, status.VectorCount)
	if !status.LastBuildTime.IsZero() {
		cmd.Printf("  last build:      %s\n", status.LastBuildTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}
