package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ifcview/internal/fixture"
)

var flagOutput string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a generated frame building as a fixture file",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagStoreys <= 0 || flagBays <= 0 {
		return fmt.Errorf("storeys and bays must be positive")
	}
	b := fixture.Generate(1, flagStoreys, flagBays)
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding fixture: %w", err)
	}

	if flagOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flagOutput, data, 0644); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d elements to %s\n", len(b.Elements), flagOutput)
	return nil
}
