package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/pkg/config"
)

func newSchemaCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for knowgen.config.yml",
		Long:  "Generates a JSON schema for the configuration file, usable by editors for validation and completion.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &jsonschema.Reflector{
				AllowAdditionalProperties: true,
				ExpandedStruct:            true,
				FieldNameTag:              "yaml",
			}

			schema := r.Reflect(&config.Config{})
			schema.Title = "knowgen Configuration"
			schema.Description = "Configuration schema for knowgen content generation."

			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write schema file: %w", err)
				}
				getLogger().Infof("Wrote schema to %s", outputPath)
				return nil
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the schema to a file instead of stdout")

	return cmd
}
