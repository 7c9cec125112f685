package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/sensact/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		target := fmt.Sprintf("app-%d", i)
		_ = mgr.WithLock(ctx, target, func(context.Context) error { return nil })
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining after runs finished", n)
	}
}
