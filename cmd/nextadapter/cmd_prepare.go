package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planv/firebase-tools/internal/pipeline"
)

var (
	prepareDir       string
	prepareOut       string
	prepareFunctions string
	prepareWorkers   int
	prepareReasons   int
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Analyze a build, export static routes and emit hosting config",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := filepath.Abs(prepareDir)
		if err != nil {
			return fmt.Errorf("failed to resolve project directory: %w", err)
		}
		outDir, err := filepath.Abs(prepareOut)
		if err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
		functionsDir, err := filepath.Abs(prepareFunctions)
		if err != nil {
			return fmt.Errorf("failed to resolve functions directory: %w", err)
		}

		res, err := pipeline.Run(cmd.Context(), pipeline.Config{
			ProjectDir:   projectDir,
			OutDir:       outDir,
			FunctionsDir: functionsDir,
			Workers:      prepareWorkers,
			ReasonLimit:  prepareReasons,
		}, logger)
		if err != nil {
			return err
		}

		// The reasons are for the user, not just the log: they explain why
		// extra infrastructure is about to be provisioned.
		if res.Decision.WantsBackend {
			fmt.Println("This application needs a server backend:")
			for _, reason := range res.Decision.Summary(prepareReasons) {
				fmt.Println("  -", reason)
			}
			fmt.Println("Function bundle written to", functionsDir)
		} else {
			fmt.Println("This application is fully static.")
		}
		fmt.Println("Static output written to", outDir)
		return nil
	},
}

func init() {
	prepareCmd.Flags().StringVar(&prepareDir, "dir", ".", "Path to the Next.js project root")
	prepareCmd.Flags().StringVar(&prepareOut, "out", "dist/hosting", "Output directory for static files")
	prepareCmd.Flags().StringVar(&prepareFunctions, "functions", "dist/functions", "Output directory for the function bundle")
	prepareCmd.Flags().IntVar(&prepareWorkers, "workers", 0, "Parallel route copies (0 = default)")
	prepareCmd.Flags().IntVar(&prepareReasons, "reasons", 0, "Max backend reasons to display (0 = default)")
}
