package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tylerclair/canopy/internal/config"
	"github.com/tylerclair/canopy/internal/generator"
	"github.com/tylerclair/canopy/internal/refresh"
)

// These variables are set at build time by the Makefile's ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose bool
	cfg     *config.Config
	log     zerolog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "canopy generates and drives Go clients for the Canvas LMS REST API.",
		Long: `canopy turns the Canvas API spec files into Go wrappers built on the
canvas session package, aggregates them into a single client, and keeps the
spec files in sync with the upstream documentation. Settings are read from
.canopy.yaml, .env and CANOPY_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()

			var err error
			cfg, err = config.Load(".")
			if err != nil {
				return fmt.Errorf("error loading %s: %w", config.FileName, err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newBuildAPICmd(),
		newBuildAllCmd(),
		newBuildClientCmd(),
		newUpdateSpecsCmd(),
		newWatchCmd(),
		newCallCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of canopy",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("canopy version %s\n", version)
			fmt.Printf("commit: %s\n", commit)
			fmt.Printf("built at: %s\n", date)
		},
	}
}

func newBuildAPICmd() *cobra.Command {
	var (
		specFile, apiName, output string
		opts                      generator.BuildOptions
	)
	cmd := &cobra.Command{
		Use:   "build-api",
		Short: "Build one API wrapper from a spec file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = cfg.Generator.OutputDir
			}
			opts.APIName = apiName
			opts.Models = opts.Models || cfg.Generator.Models
			files, err := generator.New(cfg.Generator, log).BuildAPI(specFile, output, opts)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Println(f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&specFile, "specfile", "", "Spec file to build from")
	cmd.Flags().StringVar(&apiName, "api-name", "", "Type name of the generated API (derived from the file name by default)")
	cmd.Flags().StringVar(&output, "output-folder", "", "Output folder (defaults to generator.outputDir)")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "Generate the async variant")
	cmd.Flags().BoolVar(&opts.Models, "models", false, "Also generate model structs")
	_ = cmd.MarkFlagRequired("specfile")
	return cmd
}

func newBuildAllCmd() *cobra.Command {
	var (
		specDir, output string
		opts            generator.BuildOptions
	)
	cmd := &cobra.Command{
		Use:   "build-all",
		Short: "Build an API wrapper for every spec file in a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if specDir == "" {
				specDir = cfg.Generator.SpecDir
			}
			if output == "" {
				output = cfg.Generator.OutputDir
			}
			opts.Models = opts.Models || cfg.Generator.Models
			files, err := generator.New(cfg.Generator, log).BuildAll(specDir, output, opts)
			log.Info().Int("files", len(files)).Msg("build finished")
			return err
		},
	}
	cmd.Flags().StringVar(&specDir, "specfile-path", "", "Folder holding the spec files (defaults to generator.specDir)")
	cmd.Flags().StringVar(&output, "output-folder", "", "Output folder (defaults to generator.outputDir)")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "Generate the async variants")
	cmd.Flags().BoolVar(&opts.Models, "models", false, "Also generate model structs")
	return cmd
}

func newBuildClientCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build-client",
		Short: "Aggregate the generated APIs into client.go",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = cfg.Generator.OutputDir
			}
			path, err := generator.New(cfg.Generator, log).BuildClient(output)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output-folder", "", "Folder holding the generated APIs (defaults to generator.outputDir)")
	return cmd
}

func newUpdateSpecsCmd() *cobra.Command {
	var specDir string
	cmd := &cobra.Command{
		Use:   "update-specs",
		Short: "Update spec files from the Instructure API docs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if specDir == "" {
				specDir = cfg.Generator.SpecDir
			}
			report, err := refresh.New(cfg.Refresh, specDir, log).Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range report.Updated {
				fmt.Printf("Updated %s\n", filepath.Join(specDir, name))
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d spec files failed", len(report.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&specDir, "specfile-path", "", "Folder to write the spec files to (defaults to generator.specDir)")
	return cmd
}
