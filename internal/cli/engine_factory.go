package cli

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/pkg/adapters/file"
	"github.com/aretw0/sensact/pkg/adapters/kafka"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/adapters/redis"
	"github.com/aretw0/sensact/pkg/persistence/middleware"
	"github.com/aretw0/sensact/pkg/ports"
)

// Closer releases the backends opened by the factory.
type Closer func() error

func chainClosers(closers []io.Closer) Closer {
	return func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

// OpenStore opens the snapshot store (and its locker) selected by opts.Store,
// wrapped with the masking and encryption middlewares when configured.
// "none" returns a nil store: runs are not persisted.
func OpenStore(opts Options) (ports.SnapshotStore, ports.DistributedLocker, io.Closer, error) {
	store, locker, closer, err := openBackend(opts)
	if err != nil || store == nil {
		return store, locker, closer, err
	}

	var mws []middleware.Middleware
	if len(opts.MaskVars) > 0 {
		mw, err := middleware.NewPIIMiddleware(opts.MaskVars)
		if err != nil {
			return nil, nil, nil, err
		}
		mws = append(mws, mw)
	}
	if opts.StoreKey != "" {
		key, err := decodeKey(opts.StoreKey)
		if err != nil {
			return nil, nil, nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

// decodeKey accepts a 64-digit hex or a base64 encoded key.
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("store key is neither hex nor base64: %w", err)
	}
	return key, nil
}

func openBackend(opts Options) (ports.SnapshotStore, ports.DistributedLocker, io.Closer, error) {
	switch strings.ToLower(opts.Store) {
	case "", StoreFile:
		return file.New(filepath.Join(opts.Dir, file.DefaultStoreDir)), nil, nil, nil
	case StoreMemory:
		return memory.NewStore(), memory.NewLocker(), nil, nil
	case StoreRedis:
		if opts.RedisAddr == "" {
			return nil, nil, nil, fmt.Errorf("redis store requires an address (SENSACT_REDIS_ADDR)")
		}
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		return store, redis.NewLocker(store.Client(), "sensact:"), store, nil
	case StoreNone:
		return nil, nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q (want file, redis, memory or none)", opts.Store)
	}
}

// NewEngine initializes an engine with standard CLI conventions.
func NewEngine(opts Options, logger *slog.Logger, extra ...sensact.Option) (*sensact.Engine, Closer, error) {
	var closers []io.Closer

	// 1. Logger & Hooks
	engineOpts := []sensact.Option{sensact.WithLogger(logger)}
	if opts.Debug {
		engineOpts = append(engineOpts, sensact.WithLifecycleHooks(createDebugHooks(logger)))
	}
	if opts.Loam {
		engineOpts = append(engineOpts, sensact.WithLoam())
	}
	if opts.MaxTicks > 0 {
		engineOpts = append(engineOpts, sensact.WithMaxTicks(opts.MaxTicks))
	}
	if opts.Timeout > 0 {
		engineOpts = append(engineOpts, sensact.WithTimeout(opts.Timeout))
	}
	if opts.Poll > 0 {
		engineOpts = append(engineOpts, sensact.WithPollInterval(opts.Poll))
	}

	// 2. Persistence
	store, locker, storeCloser, err := OpenStore(opts)
	if err != nil {
		return nil, nil, err
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}
	if store != nil {
		engineOpts = append(engineOpts, sensact.WithStore(store))
	}
	if locker != nil {
		engineOpts = append(engineOpts, sensact.WithLocker(locker))
	}

	// 3. Event stream
	if len(opts.KafkaBrokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers:      opts.KafkaBrokers,
			Topic:        opts.KafkaTopic,
			Async:        true,
			WriteTimeout: 5 * time.Second,
		}, kafka.WithLogger(logger))
		if err != nil {
			_ = chainClosers(closers)()
			return nil, nil, fmt.Errorf("error initializing kafka publisher: %w", err)
		}
		closers = append(closers, pub)
		engineOpts = append(engineOpts, sensact.WithLifecycleHooks(pub.Hooks()))
	}

	// 4. Initialize
	engine, err := sensact.New(opts.Dir, append(engineOpts, extra...)...)
	if err != nil {
		_ = chainClosers(closers)()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, chainClosers(closers), nil
}
