package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the rule sets for consistency",
	Long: `Compiles every rule-set document and reports decoding problems, unknown
condition and action kinds, unbindable sub-goals, shadowed rules and rule sets
unreachable from the default goal.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(optionsFromFlags(cmd), os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Rule sets are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
