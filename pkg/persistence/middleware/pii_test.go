package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "^ssn"})
	if err != nil {
		t.Fatal(err)
	}
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	snap := &domain.Snapshot{
		ID:   "pii-run",
		Goal: domain.NewRecord("login", "user", "jdoe", "password", "hunter2"),
		Variables: map[string]string{
			"username":      "jdoe",
			"user_password": "secret123",
			"ssn.number":    "999-99-9999",
			"safe_data":     "public",
		},
	}

	// 1. Save
	if err := secureStore.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The snapshot held by the caller is untouched.
	if snap.Variables["user_password"] != "secret123" || snap.Goal.Value("password") != "hunter2" {
		t.Error("Middleware modified the caller's snapshot!")
	}

	// 2. The stored copy is masked
	stored, err := underlyingStore.Load(ctx, "pii-run")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Variables["username"] != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if stored.Variables["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", stored.Variables["user_password"])
	}
	if stored.Variables["ssn.number"] != middleware.Mask {
		t.Errorf("Field of ssn should be masked, got: %v", stored.Variables["ssn.number"])
	}
	if stored.Goal.Value("password") != middleware.Mask || stored.Goal.Value("user") != "jdoe" {
		t.Errorf("Goal attributes masked wrongly: %v", stored.Goal)
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestChain_MaskThenEncrypt(t *testing.T) {
	underlyingStore := memory.NewStore()
	pii, _ := middleware.NewPIIMiddleware([]string{"password"})
	enc, _ := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: make([]byte, 32)})
	store := middleware.Chain(underlyingStore, pii, enc)

	ctx := context.Background()
	if err := store.Save(ctx, &domain.Snapshot{ID: "both", Variables: map[string]string{"password": "x"}}); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "both")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Variables["password"] != middleware.Mask {
		t.Errorf("Expected masked value after decryption, got %q", loaded.Variables["password"])
	}
}
