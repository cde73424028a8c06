// Package latency simulates the round-trip delay of a remote backend.
package latency

import (
	"context"
	"time"
)

// Simulator scales per-operation base delays. The zero value and a nil
// *Simulator never wait.
type Simulator struct {
	Scale float64
}

func New(scale float64) *Simulator {
	return &Simulator{Scale: scale}
}

// Wait blocks for base*Scale or until ctx is done.
func (s *Simulator) Wait(ctx context.Context, base time.Duration) error {
	if s == nil || s.Scale <= 0 || base <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(float64(base) * s.Scale))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
