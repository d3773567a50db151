package system

import "fmt"

// Result is the outcome of one controller verb. Message is already a
// user-facing sentence; OK is the only field callers may branch on.
type Result struct {
	OK      bool
	Message string
}

func okf(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failf(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}
