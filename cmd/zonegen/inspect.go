package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/zonegen/pkg/readers"
)

// newInspectCommand creates a new inspect command.
func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Inspect a generated Parquet file",
		Long:  `The inspect command prints the schema, row count, and row group count of a generated Parquet file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
	return cmd
}

// runInspect prints file metadata for one parquet file.
func runInspect(path string) error {
	reader, err := readers.NewParquetReader(path, 0)
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Number of rows: %d\n", reader.NumRows())
	fmt.Printf("Number of row groups: %d\n", reader.NumRowGroups())

	fmt.Println("\nSchema:")
	for i, field := range reader.Schema().Fields() {
		fmt.Printf("  Field %d: %s (%s)\n", i, field.Name, field.Type)
	}

	return nil
}
