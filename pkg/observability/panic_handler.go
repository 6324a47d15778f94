package observability

import (
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with the full stack
// trace. Call in a defer; the panic is not re-raised, so background
// goroutines (cache sweeps, session cleanup) survive a bad tick.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}
