package concurrency

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
)

// Guard runs fn and converts a panic into an ErrInternal error so one bad
// task cannot take down its siblings.
func Guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered", "task", name, "panic", r, "stack", string(debug.Stack()))
			err = llmErrors.Internal(fmt.Sprintf("task %s panicked: %v", name, r))
		}
	}()
	return fn()
}
