package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [goal [name=value]...]",
	Short: "Run a goal against a GUI model",
	Long: `Runs the named rule set (or the library default goal) against the GUI model
given with --model and prints a report of the fired rules. The command exits
non-zero unless the goal is done.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{
			Options: optionsFromFlags(cmd),
			Goal:    args,
		}
		opts.Model, _ = cmd.Flags().GetString("model")
		opts.Vars, _ = cmd.Flags().GetStringArray("var")
		opts.Target, _ = cmd.Flags().GetString("target")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Watch, _ = cmd.Flags().GetBool("watch")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if err := cli.Execute(sigCtx, opts, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Printf("\nInterrupted (%v)\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("model", "m", "", "GUI model document (YAML) the goal runs against")
	runCmd.Flags().StringArray("var", nil, "Initial variable as name=value (repeatable)")
	runCmd.Flags().String("target", "", "Key concurrent runs are serialized on")
	runCmd.Flags().Bool("json", false, "Print the run snapshot as JSON")
	runCmd.Flags().Bool("headless", false, "Print the plain markdown report")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run whenever the rule sets change")
}
