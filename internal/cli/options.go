package cli

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with --store.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// Options is the configuration shared by every command.
type Options struct {
	Dir  string
	Loam bool

	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// StoreKey enables AES-GCM encryption of stored snapshots (32 bytes,
	// hex or base64 encoded). MaskVars are regexps of variable names
	// masked before storing.
	StoreKey string
	MaskVars []string

	KafkaBrokers []string
	KafkaTopic   string

	Debug     bool
	LogFormat string

	MaxTicks int
	Timeout  time.Duration
	Poll     time.Duration
}

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Options
	Goal     []string
	Model    string
	Vars     []string
	Target   string
	JSON     bool
	Headless bool
	Watch    bool
}

// EnvOr returns the environment variable key, or fallback when it is unset.
func EnvOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// EnvInt is EnvOr for integers; malformed values fall back.
func EnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// EnvList splits a comma separated environment variable, dropping empty items.
func EnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
