package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the sub-goal graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the rule sets and the sub-goals they call.`,
	Run: func(cmd *cobra.Command, args []string) {
		runID, _ := cmd.Flags().GetString("run")
		if err := cli.Graph(cmd.Context(), optionsFromFlags(cmd), runID, os.Stdout); err != nil {
			fmt.Printf("Error generating graph: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run", "", "Highlight the rule sets fired by a stored run")
}
