package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.RegisterCondition("ready", func(ctx context.Context, c *domain.Record) (bool, error) {
		return c.Value("state") == "up", nil
	})
	r.RegisterAction("boom", func(ctx context.Context, a *domain.Record) error {
		return errors.New("boom")
	})

	ok, err := r.Sense(ctx, domain.NewRecord("ready", "state", "up"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.Sense(ctx, domain.NewRecord("missing"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.EqualError(t, r.Act(ctx, domain.NewRecord("boom")), "boom")
	assert.ErrorIs(t, r.Act(ctx, domain.NewRecord("nope")), ErrUnknownKind)

	assert.True(t, r.HasCondition("ready"))
	assert.False(t, r.HasAction("ready"))
	assert.Equal(t, []string{"ready"}, r.Conditions())
	assert.Equal(t, []string{"boom"}, r.Actions())
}
