package database

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *commitHooks) add(fn func()) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *commitHooks) reset() {
	h.mu.Lock()
	h.fns = nil
	h.mu.Unlock()
}

func (h *commitHooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// WithCommitHooks returns a context that collects AfterCommit callbacks and a function that runs them.
func WithCommitHooks(ctx context.Context) (context.Context, func()) {
	hooks := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, hooks), hooks.run
}

// AfterCommit defers fn until the transaction carried by ctx commits. Outside a transaction fn runs immediately.
// Callbacks registered by an aborted transaction are dropped.
func AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}
	hooks.add(fn)
}

func hooksFrom(ctx context.Context) *commitHooks {
	hooks, _ := ctx.Value(commitHooksKey{}).(*commitHooks)
	return hooks
}
