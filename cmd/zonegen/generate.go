package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/TFMV/zonegen/config"
	"github.com/TFMV/zonegen/logger"
	"github.com/TFMV/zonegen/pkg/core"
	"github.com/TFMV/zonegen/pkg/zone"
)

// GenerateOptions represents the options for the generate command.
type GenerateOptions struct {
	ConfigPath    string
	ScaleFactor   float64
	OutputDir     string
	Format        string
	Parts         int32
	Part          int32
	RowGroupBytes int64
	Compression   string
	ManifestPath  string
	Verbose       bool
}

// newGenerateCommand creates a new generate command.
func newGenerateCommand() *cobra.Command {
	cmd, _ := newGenerateCommandWithOptions()
	return cmd
}

// newGenerateCommandWithOptions returns the command together with its
// bound options, so tests can drive flag handling directly.
func newGenerateCommandWithOptions() (*cobra.Command, *GenerateOptions) {
	options := &GenerateOptions{
		ScaleFactor:   1.0,
		OutputDir:     ".",
		Format:        "parquet",
		Parts:         1,
		RowGroupBytes: 128 << 20,
		Compression:   config.CompressionSnappy,
	}

	cmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Generate the zone table as partitioned Parquet",
		Long: `The generate command produces the zone table at the requested scale
factor and writes it as one or more Parquet files.

With --part, only that part's rows are computed (offset/limit pushdown).
Without --part, the full row set is materialized once and every part is
sliced out of it in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, options)
		},
	}

	cmd.Flags().StringVar(&options.ConfigPath, "config", "", "Optional YAML config file; flags take precedence")
	cmd.Flags().Float64VarP(&options.ScaleFactor, "scale-factor", "s", options.ScaleFactor, "Scale factor for the dataset (clamped up to 1.0)")
	cmd.Flags().StringVarP(&options.OutputDir, "output", "o", options.OutputDir, "Output root directory")
	cmd.Flags().StringVarP(&options.Format, "format", "f", options.Format, "Output format (only parquet is supported for the zone table)")
	cmd.Flags().Int32Var(&options.Parts, "parts", options.Parts, "Number of output parts")
	cmd.Flags().Int32Var(&options.Part, "part", 0, "Generate only this 1-based part (default: all parts)")
	cmd.Flags().Int64Var(&options.RowGroupBytes, "row-group-bytes", options.RowGroupBytes, "Parquet row group size hint in bytes")
	cmd.Flags().StringVar(&options.Compression, "compression", options.Compression, "Parquet compression codec (uncompressed, snappy, gzip, zstd, lz4, brotli)")
	cmd.Flags().StringVar(&options.ManifestPath, "manifest", "", "Write a JSON generation manifest to this path")
	cmd.Flags().BoolVarP(&options.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd, options
}

// runGenerate executes the generate command with the given options.
func runGenerate(cmd *cobra.Command, options *GenerateOptions) error {
	if options.Verbose {
		logger.SetVerbose()
	}
	logger.InitLogger()

	if options.Format != "parquet" {
		return fmt.Errorf("the zone table is only supported in --format=parquet")
	}

	cfg, err := buildConfig(cmd, options)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var sel core.PartSelection = core.AllParts{}
	if options.Part != 0 {
		sel = core.SinglePart{Part: options.Part}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nCancelling generation...")
		cancel()
	}()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" generating zone table (sf=%g, parts=%d)", cfg.ScaleFactor, cfg.Parts)
	s.Start()

	manifest, err := zone.Generate(ctx, cfg, sel)
	s.Stop()
	if err != nil {
		return err
	}

	for _, f := range manifest.Files {
		fmt.Printf("wrote %s (%d rows, offset %d)\n", f.Path, f.Rows, f.Offset)
	}

	if options.ManifestPath != "" {
		if err := manifest.Save(options.ManifestPath); err != nil {
			return err
		}
		fmt.Printf("manifest written to %s\n", options.ManifestPath)
	}

	return nil
}

// buildConfig merges the optional config file with the command flags.
// Explicitly-set flags win over file values; untouched flags take the
// file's value when the file provides one.
func buildConfig(cmd *cobra.Command, options *GenerateOptions) (*config.Config, error) {
	cfg := &config.Config{
		ScaleFactor:   max(options.ScaleFactor, 1.0),
		OutputDir:     options.OutputDir,
		Parts:         options.Parts,
		Part:          options.Part,
		RowGroupBytes: options.RowGroupBytes,
		Compression:   options.Compression,
	}

	if options.ConfigPath == "" {
		return cfg, nil
	}

	fileCfg, err := config.Load(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	flags := cmd.Flags()
	if fileCfg.ScaleFactor > 0 && !flags.Changed("scale-factor") {
		cfg.ScaleFactor = max(fileCfg.ScaleFactor, 1.0)
	}
	if fileCfg.OutputDir != "" && !flags.Changed("output") {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.Parts > 0 && !flags.Changed("parts") {
		cfg.Parts = fileCfg.Parts
	}
	if fileCfg.Part > 0 && !flags.Changed("part") {
		cfg.Part = fileCfg.Part
	}
	if fileCfg.RowGroupBytes > 0 && !flags.Changed("row-group-bytes") {
		cfg.RowGroupBytes = fileCfg.RowGroupBytes
	}
	if fileCfg.Compression != "" && !flags.Changed("compression") {
		cfg.Compression = fileCfg.Compression
	}

	return cfg, nil
}
