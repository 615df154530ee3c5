package engine

import "context"

// withContextCancelHook runs onContextDone when ctx ends, unless the
// returned channel is closed first. Used to unblock body reads when a turn
// is cancelled mid-stream.
func withContextCancelHook(ctx context.Context, onContextDone func()) chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			onContextDone()
		case <-done:
		}
	}()
	return done
}
