// Package main provides the entry point for the zonegen dataset generator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/zonegen/logger"
	"github.com/TFMV/zonegen/version"
)

// Main entry point for the zonegen tool
func main() {
	rootCmd := &cobra.Command{
		Use:   "zonegen",
		Short: "zonegen generates the zone table of a synthetic geospatial benchmark",
		Long: `zonegen generates the zone table of a synthetic geospatial benchmark
dataset as partitioned Parquet. It leverages Apache Arrow to slice the
row range into exact, contiguous parts and assigns a primary key that
is contiguous across all parts.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of zonegen",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zonegen v%s (%s)\n", version.GetVersion(), version.GetBuildDate())
		},
	})

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newServeCommand())

	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
