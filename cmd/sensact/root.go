package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sensact",
	Short: "Sensact drives user interfaces towards goals with sense/act rules",
	Long: `Sensact loads rule sets from a directory and runs goals against a GUI model:
each tick the first rule whose conditions hold fires its actions, until a rule
reports done or fail.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the rule-set documents")
	flags.Bool("loam", false, "Load rule sets through a read-only loam repository")
	flags.String("store", cli.EnvOr("SENSACT_STORE", cli.StoreFile), "Run snapshot store: file, redis, memory or none")
	flags.Bool("debug", false, "Log engine lifecycle events to stderr")
	flags.String("log-format", cli.EnvOr("SENSACT_LOG_FORMAT", "text"), "Log format: text or json")
	flags.Int("max-ticks", 0, "Tick bound per goal (0 keeps the engine default)")
	flags.Duration("timeout", 0, "Wall-clock bound of a run (0 for none)")
	flags.Duration("poll", 0, "Pause between ticks")
}

// optionsFromFlags reads the persistent flags and the SENSACT_* environment.
func optionsFromFlags(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{
		RedisAddr:     os.Getenv("SENSACT_REDIS_ADDR"),
		RedisPassword: os.Getenv("SENSACT_REDIS_PASSWORD"),
		RedisDB:       cli.EnvInt("SENSACT_REDIS_DB", 0),
		KafkaBrokers:  cli.EnvList("SENSACT_KAFKA_BROKERS"),
		KafkaTopic:    os.Getenv("SENSACT_KAFKA_TOPIC"),
		StoreKey:      os.Getenv("SENSACT_STORE_KEY"),
		MaskVars:      cli.EnvList("SENSACT_MASK_VARS"),
	}
	opts.Dir, _ = flags.GetString("dir")
	opts.Loam, _ = flags.GetBool("loam")
	opts.Store, _ = flags.GetString("store")
	opts.Debug, _ = flags.GetBool("debug")
	opts.LogFormat, _ = flags.GetString("log-format")
	opts.MaxTicks, _ = flags.GetInt("max-ticks")
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.Poll, _ = flags.GetDuration("poll")
	return opts
}
