package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/zonegen/pkg/zone"
)

// SchemaOptions represents the options for the schema command.
type SchemaOptions struct {
	OutputFormat    string
	ShowDerivations bool
}

// newSchemaCommand creates a new schema command.
func newSchemaCommand() *cobra.Command {
	options := &SchemaOptions{
		OutputFormat: "text",
	}

	cmd := &cobra.Command{
		Use:   "schema [flags]",
		Short: "Print the zone output schema",
		Long: `The schema command prints the zone table's output schema without
generating any rows, so loaders can pre-declare the table. With
--derivations it also prints the column mapping from the raw source
schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(options)
		},
	}

	cmd.Flags().StringVarP(&options.OutputFormat, "format", "f", options.OutputFormat, "Output format (text, json)")
	cmd.Flags().BoolVar(&options.ShowDerivations, "derivations", false, "Show the column derivation table")

	return cmd
}

// runSchema executes the schema command with the given options.
func runSchema(options *SchemaOptions) error {
	schema := zone.OutputSchema()

	switch options.OutputFormat {
	case "json":
		type fieldJSON struct {
			Name     string `json:"name"`
			Type     string `json:"type"`
			Nullable bool   `json:"nullable"`
		}
		fields := make([]fieldJSON, 0, schema.NumFields())
		for _, f := range schema.Fields() {
			fields = append(fields, fieldJSON{Name: f.Name, Type: f.Type.String(), Nullable: f.Nullable})
		}
		out, err := json.MarshalIndent(map[string]any{"table": "zone", "fields": fields}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		fmt.Println("Table: zone")
		for i, f := range schema.Fields() {
			fmt.Printf("  Field %d: %s (%s)\n", i, f.Name, f.Type)
		}
		if options.ShowDerivations {
			fmt.Println("\nDerivations:")
			fmt.Printf("  %s <- row offset + position\n", zone.KeyColumn)
			for _, d := range zone.Derivations() {
				fmt.Printf("  %s <- %s\n", d.Output, d.Source)
			}
		}
	default:
		return fmt.Errorf("unsupported output format: %s", options.OutputFormat)
	}

	return nil
}
