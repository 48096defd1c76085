package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Every identifier verified, none UNSAFE
	ExitUnsafe  = 1 // At least one identifier was classified UNSAFE
	ExitError   = 2 // Configuration or runtime error
)

// UnsafeVerdictError reports that verification completed but at least one
// identifier was classified UNSAFE.
type UnsafeVerdictError struct {
	Identifiers []string
}

func (e *UnsafeVerdictError) Error() string {
	return fmt.Sprintf("%d identifier(s) classified UNSAFE", len(e.Identifiers))
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var unsafeErr *UnsafeVerdictError
		if errors.As(err, &unsafeErr) {
			os.Exit(ExitUnsafe)
		}
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
