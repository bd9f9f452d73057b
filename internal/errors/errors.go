package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/finlit/internal/logger"
)

// Format renders err for the terminal. Validation errors drop the
// operation prefix since it means nothing to the user.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok && e.Kind == KindValidation {
		return "Error: invalid input: " + e.Msg
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal prints err and exits with status 1. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err, "kind", KindOf(err))
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}
