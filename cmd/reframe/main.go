package main

import (
	"errors"
	"fmt"
	"os"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.message != "" {
			fmt.Fprintln(os.Stderr, exit.message)
		}
		os.Exit(exit.code)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// exitError carries a specific process exit status through cobra's
// error return: 1 when no file was processed, 130 after an interrupt.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("exit status %d", e.code)
}
