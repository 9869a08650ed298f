package repokit

import (
	"context"
	"fmt"
	"time"
)

// Guarder is a store that can check its backends
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard panics when g's backends do not answer within 10s
func MustGuard(ctx context.Context, g Guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
