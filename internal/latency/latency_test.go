package latency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait_ZeroScaleReturnsImmediately(t *testing.T) {
	t.Parallel()

	start := time.Now()
	assert.NoError(t, New(0).Wait(context.Background(), time.Hour))
	var nilSim *Simulator
	assert.NoError(t, nilSim.Wait(context.Background(), time.Hour))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWait_Scaled(t *testing.T) {
	t.Parallel()

	start := time.Now()
	assert.NoError(t, New(0.5).Wait(context.Background(), 40*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWait_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New(1).Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, New(0).Wait(ctx, time.Hour), context.Canceled)
}
