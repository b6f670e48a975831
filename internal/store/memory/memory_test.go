package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestReturnedServicesAreCopies(t *testing.T) {
	s := New()
	storetest.MustInsert(t, s, &domain.Service{ID: "svc-1", Name: "Netflix", NormalizedName: "netflix"})

	got, err := s.ServiceByID(context.Background(), "svc-1")
	require.NoError(t, err)
	got.ReportsCount = 999

	again, err := s.ServiceByID(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Zero(t, again.ReportsCount)
}

func TestAtomicHonoursCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Atomic(ctx, func(context.Context, store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
